package resources

import (
	"fmt"
	"time"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	awssanitizer "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization/aws"
)

const (
	USER_POOL_TYPE                     = "cognito_user_pool"
	USER_POOL_CLIENT_TYPE              = "cognito_user_pool_client"
	IDENTITY_POOL_TYPE                 = "cognito_identity_pool"
	IDENTITY_POOL_ROLE_ATTACHMENT_TYPE = "cognito_identity_pool_role_attachment"

	CognitoIdentityPrincipal = "cognito-identity.amazonaws.com"
)

type (
	UserPool struct {
		*construct.Resource
	}

	UserPoolParams struct {
		UserPoolName      string
		SelfSignUpEnabled bool
		// SignInWithEmail makes the email address the username. Usernames are not accepted as aliases.
		SignInWithEmail    bool
		DeletionProtection bool
		RemovalPolicy      construct.RemovalPolicy
	}

	UserPoolClient struct {
		*construct.Resource
	}

	UserPoolClientParams struct {
		ClientName      string
		IdTokenValidity time.Duration
	}

	IdentityPool struct {
		*construct.Resource
		AuthenticatedRole   *IamRole
		UnauthenticatedRole *IamRole
		RoleAttachment      *construct.Resource
	}

	IdentityPoolParams struct {
		IdentityPoolName               string
		AllowUnauthenticatedIdentities bool
		UserPool                       *UserPool
		UserPoolClient                 *UserPoolClient
	}
)

func NewUserPool(scope construct.Scope, id string, params UserPoolParams) (*UserPool, error) {
	r := newResource(scope, USER_POOL_TYPE, id)
	r.Properties["UserPoolName"] = awssanitizer.CognitoUserPoolSanitizer.Apply(params.UserPoolName)
	r.Properties["AdminCreateUserConfig"] = map[string]any{
		"AllowAdminCreateUserOnly": !params.SelfSignUpEnabled,
	}
	if params.SignInWithEmail {
		r.Properties["UsernameAttributes"] = []string{"email"}
		r.Properties["AutoVerifiedAttributes"] = []string{"email"}
	}
	r.Properties["AccountRecoverySetting"] = map[string]any{
		"RecoveryMechanisms": []any{
			map[string]any{"Name": "verified_phone_number", "Priority": 1},
			map[string]any{"Name": "verified_email", "Priority": 2},
		},
	}
	if params.DeletionProtection {
		r.Properties["DeletionProtection"] = "ACTIVE"
	} else {
		r.Properties["DeletionProtection"] = "INACTIVE"
	}
	r.Properties["VerificationMessageTemplate"] = map[string]any{
		"DefaultEmailOption": "CONFIRM_WITH_CODE",
		"EmailMessage":       "The verification code to your new account is {####}",
		"EmailSubject":       "Verify your new account",
		"SmsMessage":         "The verification code to your new account is {####}",
	}
	r.RemovalPolicy = params.RemovalPolicy
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &UserPool{Resource: r}, nil
}

func (up *UserPool) UserPoolId() construct.PropertyRef {
	return construct.Ref(up.ID)
}

func (up *UserPool) ProviderName() construct.PropertyRef {
	return construct.Attr(up.ID, "ProviderName")
}

// AddClient declares an app client of the pool under the pool's scope.
func (up *UserPool) AddClient(scope construct.Scope, id string, params UserPoolClientParams) (*UserPoolClient, error) {
	if params.IdTokenValidity < 5*time.Minute || params.IdTokenValidity > 24*time.Hour {
		return nil, fmt.Errorf("id token validity must be between 5 minutes and 1 day, got %s", params.IdTokenValidity)
	}
	r := newResource(scope, USER_POOL_CLIENT_TYPE, id)
	r.Properties["ClientName"] = awssanitizer.CognitoUserPoolSanitizer.Apply(params.ClientName)
	r.Properties["UserPoolId"] = up.UserPoolId()
	r.Properties["IdTokenValidity"] = int(params.IdTokenValidity / time.Minute)
	r.Properties["TokenValidityUnits"] = map[string]any{"IdToken": "minutes"}
	r.Properties["ExplicitAuthFlows"] = []string{"ALLOW_USER_SRP_AUTH", "ALLOW_REFRESH_TOKEN_AUTH"}
	r.Properties["AllowedOAuthFlows"] = []string{"implicit", "code"}
	r.Properties["AllowedOAuthFlowsUserPoolClient"] = true
	r.Properties["AllowedOAuthScopes"] = []string{"profile", "phone", "email", "openid", "aws.cognito.signin.user.admin"}
	r.Properties["CallbackURLs"] = []string{"https://example.com"}
	r.Properties["SupportedIdentityProviders"] = []string{"COGNITO"}
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &UserPoolClient{Resource: r}, nil
}

func (c *UserPoolClient) ClientId() construct.PropertyRef {
	return construct.Ref(c.ID)
}

// NewIdentityPool declares an identity pool federating `UserPool`, the two roles identities assume
// (authenticated and unauthenticated) and the attachment binding them to the pool. Role names are left
// to the provisioning engine; use [construct.Scope.Override] to fix them.
func NewIdentityPool(scope construct.Scope, id string, params IdentityPoolParams) (*IdentityPool, error) {
	r := newResource(scope, IDENTITY_POOL_TYPE, id)
	r.Properties["IdentityPoolName"] = awssanitizer.CognitoIdentityPoolSanitizer.Apply(params.IdentityPoolName)
	r.Properties["AllowUnauthenticatedIdentities"] = params.AllowUnauthenticatedIdentities
	r.Properties["AllowClassicFlow"] = false
	r.Properties["CognitoIdentityProviders"] = []any{
		map[string]any{
			"ClientId":             params.UserPoolClient.ClientId(),
			"ProviderName":         params.UserPool.ProviderName(),
			"ServerSideTokenCheck": true,
		},
	}
	if err := scope.Declare(r); err != nil {
		return nil, err
	}

	sc := scope.Child(id)
	authenticated, err := NewIamRole(sc, "AuthenticatedRole", IamRoleParams{
		AssumeRolePolicyDocument: identityPoolAssumeRolePolicy(r.ID, "authenticated"),
	})
	if err != nil {
		return nil, err
	}
	unauthenticated, err := NewIamRole(sc, "UnauthenticatedRole", IamRoleParams{
		AssumeRolePolicyDocument: identityPoolAssumeRolePolicy(r.ID, "unauthenticated"),
	})
	if err != nil {
		return nil, err
	}

	attachment := newResource(sc, IDENTITY_POOL_ROLE_ATTACHMENT_TYPE, "DefaultRoleAttachment")
	attachment.Properties["IdentityPoolId"] = construct.Ref(r.ID)
	attachment.Properties["Roles"] = map[string]any{
		"authenticated":   authenticated.Arn(),
		"unauthenticated": unauthenticated.Arn(),
	}
	if err := sc.Declare(attachment); err != nil {
		return nil, err
	}

	return &IdentityPool{
		Resource:            r,
		AuthenticatedRole:   authenticated,
		UnauthenticatedRole: unauthenticated,
		RoleAttachment:      attachment,
	}, nil
}

func (ip *IdentityPool) IdentityPoolId() construct.PropertyRef {
	return construct.Ref(ip.ID)
}

func identityPoolAssumeRolePolicy(pool construct.ResourceId, amr string) *PolicyDocument {
	return &PolicyDocument{
		Version: VERSION,
		Statement: []StatementEntry{
			{
				Effect:    "Allow",
				Action:    []string{"sts:AssumeRoleWithWebIdentity"},
				Principal: &Principal{Federated: CognitoIdentityPrincipal},
				Condition: map[string]map[string]any{
					"StringEquals": {
						CognitoIdentityPrincipal + ":aud": construct.Ref(pool),
					},
					"ForAnyValue:StringLike": {
						CognitoIdentityPrincipal + ":amr": amr,
					},
				},
			},
		},
	}
}
