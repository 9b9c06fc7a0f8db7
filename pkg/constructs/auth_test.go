package constructs

import (
	"testing"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/provider/aws/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declareTestAuth(t *testing.T, prefix string) (*construct.Stack, *Auth) {
	t.Helper()
	stack := construct.NewStack("test")
	auth, err := DeclareAuth(stack.Root(), AuthProps{NamePrefix: prefix})
	require.NoError(t, err)
	return stack, auth
}

func Test_DeclareAuth_userPool(t *testing.T) {
	assert := assert.New(t)

	_, auth := declareTestAuth(t, "p")
	props := auth.UserPool.Properties

	assert.Equal("p-user-pool", props["UserPoolName"])
	assert.Equal([]string{"email"}, props["UsernameAttributes"])
	assert.Equal([]string{"email"}, props["AutoVerifiedAttributes"])
	assert.Equal(map[string]any{"AllowAdminCreateUserOnly": false}, props["AdminCreateUserConfig"])
	assert.Equal("INACTIVE", props["DeletionProtection"])
	assert.Equal(construct.RemovalPolicyDestroy, auth.UserPool.RemovalPolicy)
}

func Test_DeclareAuth_client(t *testing.T) {
	assert := assert.New(t)

	_, auth := declareTestAuth(t, "p")
	props := auth.UserPoolClient.Properties

	assert.Equal("p-client", props["ClientName"])
	assert.Equal(auth.UserPool.UserPoolId(), props["UserPoolId"])
	assert.Equal(1440, props["IdTokenValidity"])
	assert.Equal(map[string]any{"IdToken": "minutes"}, props["TokenValidityUnits"])
	assert.Equal([]string{"ALLOW_USER_SRP_AUTH", "ALLOW_REFRESH_TOKEN_AUTH"}, props["ExplicitAuthFlows"])
}

func Test_DeclareAuth_identityPool(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stack, auth := declareTestAuth(t, "p")
	pool := auth.IdentityPool

	assert.Equal("p-id-pool", pool.Properties["IdentityPoolName"])
	assert.Equal(false, pool.Properties["AllowUnauthenticatedIdentities"])
	assert.Equal([]any{map[string]any{
		"ClientId":             auth.UserPoolClient.ClientId(),
		"ProviderName":         auth.UserPool.ProviderName(),
		"ServerSideTokenCheck": true,
	}}, pool.Properties["CognitoIdentityProviders"])

	attachments, err := construct.ResourcesOfType(stack.Graph, construct.ResourceId{
		Provider: resources.AWS_PROVIDER,
		Type:     resources.IDENTITY_POOL_ROLE_ATTACHMENT_TYPE,
	})
	require.NoError(err)
	require.Len(attachments, 1)
	assert.Equal(map[string]any{
		"authenticated":   pool.AuthenticatedRole.Arn(),
		"unauthenticated": pool.UnauthenticatedRole.Arn(),
	}, attachments[0].Properties["Roles"])
}

func Test_DeclareAuth_roleTrust(t *testing.T) {
	tests := []struct {
		name string
		role func(*Auth) *resources.IamRole
		amr  string
	}{
		{name: "authenticated", role: func(a *Auth) *resources.IamRole { return a.IdentityPool.AuthenticatedRole }, amr: "authenticated"},
		{name: "unauthenticated", role: func(a *Auth) *resources.IamRole { return a.IdentityPool.UnauthenticatedRole }, amr: "unauthenticated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			_, auth := declareTestAuth(t, "p")
			doc := tt.role(auth).Properties["AssumeRolePolicyDocument"].(*resources.PolicyDocument)
			if assert.Len(doc.Statement, 1) {
				st := doc.Statement[0]
				assert.Equal([]string{"sts:AssumeRoleWithWebIdentity"}, st.Action)
				assert.Equal("cognito-identity.amazonaws.com", st.Principal.Federated)
				assert.Equal(construct.Ref(auth.IdentityPool.ID), st.Condition["StringEquals"]["cognito-identity.amazonaws.com:aud"])
				assert.Equal(tt.amr, st.Condition["ForAnyValue:StringLike"]["cognito-identity.amazonaws.com:amr"])
			}
		})
	}
}

func Test_DeclareAuth_roleNamesAreOverrides(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	stack, auth := declareTestAuth(t, "p")
	authenticated := auth.IdentityPool.AuthenticatedRole
	unauthenticated := auth.IdentityPool.UnauthenticatedRole

	// names are only set by the second phase
	assert.Nil(authenticated.Properties["RoleName"])
	assert.Nil(unauthenticated.Properties["RoleName"])
	assert.Len(stack.Overrides(), 2)

	require.NoError(stack.ApplyOverrides())
	assert.Equal("p-id-pool-authenticated-role", authenticated.Properties["RoleName"])
	assert.Equal("p-id-pool-unauthenticated-role", unauthenticated.Properties["RoleName"])

	require.NoError(stack.ApplyOverrides())
	assert.Equal("p-id-pool-authenticated-role", authenticated.Properties["RoleName"])
}
