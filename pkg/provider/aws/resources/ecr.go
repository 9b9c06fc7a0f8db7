package resources

import (
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/construct"
	awssanitizer "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/sanitization/aws"
)

const (
	ECR_REPO_TYPE       = "ecr_repository"
	ECR_DEPLOYMENT_TYPE = "ecr_deployment"
)

type (
	EcrRepository struct {
		*construct.Resource
	}

	EcrRepositoryParams struct {
		RepositoryName string
		ScanOnPush     bool
		// EmptyOnDelete deletes the images of the repository when the repository is deleted.
		EmptyOnDelete bool
		RemovalPolicy construct.RemovalPolicy
	}

	// EcrDeployment copies a container image into a repository while the stack is provisioned. It is a
	// custom resource whose handler is shared by all stacks of the account and imported by export name.
	EcrDeployment struct {
		*construct.Resource
	}

	EcrDeploymentParams struct {
		// HandlerExport is the name of the export holding the deployment handler function ARN.
		HandlerExport string
		SrcImage      string
		DestImage     any
	}
)

func NewEcrRepository(scope construct.Scope, id string, params EcrRepositoryParams) (*EcrRepository, error) {
	r := newResource(scope, ECR_REPO_TYPE, id)
	r.Properties["RepositoryName"] = awssanitizer.EcrRepositorySanitizer.Apply(params.RepositoryName)
	r.Properties["ImageScanningConfiguration"] = map[string]any{"ScanOnPush": params.ScanOnPush}
	if params.EmptyOnDelete {
		r.Properties["EmptyOnDelete"] = true
	}
	r.RemovalPolicy = params.RemovalPolicy
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &EcrRepository{Resource: r}, nil
}

func (repo *EcrRepository) Arn() construct.PropertyRef {
	return construct.Attr(repo.ID, "Arn")
}

func (repo *EcrRepository) RepositoryUri() construct.PropertyRef {
	return construct.Attr(repo.ID, "RepositoryUri")
}

// ImageUri is the uri of `tag` in the repository.
func (repo *EcrRepository) ImageUri(tag string) construct.Join {
	return construct.Join{Delimiter: ":", Values: []any{repo.RepositoryUri(), tag}}
}

func NewEcrDeployment(scope construct.Scope, id string, params EcrDeploymentParams) (*EcrDeployment, error) {
	r := newResource(scope, ECR_DEPLOYMENT_TYPE, id)
	r.Properties["ServiceToken"] = construct.ImportValue{Name: params.HandlerExport}
	r.Properties["SrcImage"] = "docker://" + params.SrcImage
	r.Properties["DestImage"] = params.DestImage
	if err := scope.Declare(r); err != nil {
		return nil, err
	}
	return &EcrDeployment{Resource: r}, nil
}
