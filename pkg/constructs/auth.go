package constructs

import (
	"time"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/provider/aws/resources"
)

type (
	AuthProps struct {
		NamePrefix string
	}

	// Auth is the user directory of the application: a user pool signing in by email, its app client and
	// an identity pool exchanging the client's tokens for AWS credentials.
	Auth struct {
		UserPool       *resources.UserPool
		UserPoolClient *resources.UserPoolClient
		IdentityPool   *resources.IdentityPool
	}
)

const IdTokenValidity = 24 * time.Hour

func DeclareAuth(scope construct.Scope, props AuthProps) (*Auth, error) {
	sc := scope.Child("auth")

	userPool, err := resources.NewUserPool(sc, "UserPool", resources.UserPoolParams{
		UserPoolName:       props.NamePrefix + "-user-pool",
		SelfSignUpEnabled:  true,
		SignInWithEmail:    true,
		DeletionProtection: false,
		RemovalPolicy:      construct.RemovalPolicyDestroy,
	})
	if err != nil {
		return nil, err
	}

	client, err := userPool.AddClient(sc.Child("UserPool"), "UserPoolClient", resources.UserPoolClientParams{
		ClientName:      props.NamePrefix + "-client",
		IdTokenValidity: IdTokenValidity,
	})
	if err != nil {
		return nil, err
	}

	idPool, err := resources.NewIdentityPool(sc, "IdentityPool", resources.IdentityPoolParams{
		IdentityPoolName: props.NamePrefix + "-id-pool",
		UserPool:         userPool,
		UserPoolClient:   client,
	})
	if err != nil {
		return nil, err
	}

	// the pool roles are declared with generated names and renamed once the stack is complete
	sc.Override("authenticated-role-name", idPool.AuthenticatedRole.ID, "RoleName",
		props.NamePrefix+"-id-pool-authenticated-role")
	sc.Override("unauthenticated-role-name", idPool.UnauthenticatedRole.ID, "RoleName",
		props.NamePrefix+"-id-pool-unauthenticated-role")

	return &Auth{
		UserPool:       userPool,
		UserPoolClient: client,
		IdentityPool:   idPool,
	}, nil
}
