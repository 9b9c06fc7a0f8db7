package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/google/uuid"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/collectionutil"
	cfn "github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/infra/cloudformation"
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/logging"
)

// CloudFormation is the subset of the CloudFormation API the deployer uses.
type CloudFormation interface {
	DescribeStacksWithContext(aws.Context, *cloudformation.DescribeStacksInput, ...request.Option) (*cloudformation.DescribeStacksOutput, error)
	CreateChangeSetWithContext(aws.Context, *cloudformation.CreateChangeSetInput, ...request.Option) (*cloudformation.CreateChangeSetOutput, error)
	DescribeChangeSetWithContext(aws.Context, *cloudformation.DescribeChangeSetInput, ...request.Option) (*cloudformation.DescribeChangeSetOutput, error)
	ExecuteChangeSetWithContext(aws.Context, *cloudformation.ExecuteChangeSetInput, ...request.Option) (*cloudformation.ExecuteChangeSetOutput, error)
	DeleteChangeSetWithContext(aws.Context, *cloudformation.DeleteChangeSetInput, ...request.Option) (*cloudformation.DeleteChangeSetOutput, error)
	WaitUntilChangeSetCreateCompleteWithContext(aws.Context, *cloudformation.DescribeChangeSetInput, ...request.WaiterOption) error
	WaitUntilStackCreateCompleteWithContext(aws.Context, *cloudformation.DescribeStacksInput, ...request.WaiterOption) error
	WaitUntilStackUpdateCompleteWithContext(aws.Context, *cloudformation.DescribeStacksInput, ...request.WaiterOption) error
}

// ErrNoChanges is returned by [Deployer.Deploy] when the stack already matches the template.
var ErrNoChanges = errors.New("no changes to deploy")

// maxTemplateBody is the largest template CloudFormation accepts inline.
const maxTemplateBody = 51200

type Deployer struct {
	Client CloudFormation
	// Tags are propagated by CloudFormation to every resource of the stack that supports tagging.
	Tags map[string]string
}

func NewDeployer(sess *session.Session) *Deployer {
	return &Deployer{Client: cloudformation.New(sess)}
}

// Deploy creates or updates `stackName` to match `template` through a change set and returns the stack
// outputs once the stack is stable.
func (d *Deployer) Deploy(ctx context.Context, stackName string, template *cfn.Template) (map[string]string, error) {
	log := logging.GetLogger(ctx).Sugar().Named("deploy").With("stack", stackName)

	body := new(bytes.Buffer)
	if err := template.WriteJSON(body); err != nil {
		return nil, fmt.Errorf("could not render template: %w", err)
	}
	if body.Len() > maxTemplateBody {
		return nil, fmt.Errorf("template is %d bytes, over the %d bytes accepted inline", body.Len(), maxTemplateBody)
	}

	stack, err := d.describeStack(ctx, stackName)
	if err != nil {
		return nil, err
	}
	changeSetType := cloudformation.ChangeSetTypeUpdate
	// a stack left in review by a change set that was never executed has no resources yet
	if stack == nil || aws.StringValue(stack.StackStatus) == cloudformation.StackStatusReviewInProgress {
		changeSetType = cloudformation.ChangeSetTypeCreate
	}

	changeSet := &cloudformation.DescribeChangeSetInput{
		StackName:     aws.String(stackName),
		ChangeSetName: aws.String("deploy-" + uuid.NewString()),
	}
	log.Infof("creating %s change set %s", strings.ToLower(changeSetType), aws.StringValue(changeSet.ChangeSetName))
	_, err = d.Client.CreateChangeSetWithContext(ctx, &cloudformation.CreateChangeSetInput{
		StackName:     changeSet.StackName,
		ChangeSetName: changeSet.ChangeSetName,
		ChangeSetType: aws.String(changeSetType),
		TemplateBody:  aws.String(body.String()),
		Capabilities: aws.StringSlice([]string{
			cloudformation.CapabilityCapabilityIam,
			cloudformation.CapabilityCapabilityNamedIam,
		}),
		Tags: d.tags(),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create change set: %w", err)
	}

	if waitErr := d.Client.WaitUntilChangeSetCreateCompleteWithContext(ctx, changeSet); waitErr != nil {
		described, err := d.Client.DescribeChangeSetWithContext(ctx, changeSet)
		if err != nil {
			return nil, errors.Join(waitErr, err)
		}
		reason := aws.StringValue(described.StatusReason)
		if isNoChanges(reason) {
			log.Info("stack is up to date")
			_, err := d.Client.DeleteChangeSetWithContext(ctx, &cloudformation.DeleteChangeSetInput{
				StackName:     changeSet.StackName,
				ChangeSetName: changeSet.ChangeSetName,
			})
			if err != nil {
				log.Warnf("could not delete empty change set: %v", err)
			}
			return nil, ErrNoChanges
		}
		return nil, fmt.Errorf("change set %s failed: %s: %w", aws.StringValue(changeSet.ChangeSetName), reason, waitErr)
	}

	log.Info("executing change set")
	_, err = d.Client.ExecuteChangeSetWithContext(ctx, &cloudformation.ExecuteChangeSetInput{
		StackName:     changeSet.StackName,
		ChangeSetName: changeSet.ChangeSetName,
	})
	if err != nil {
		return nil, fmt.Errorf("could not execute change set: %w", err)
	}

	stackInput := &cloudformation.DescribeStacksInput{StackName: aws.String(stackName)}
	if changeSetType == cloudformation.ChangeSetTypeCreate {
		err = d.Client.WaitUntilStackCreateCompleteWithContext(ctx, stackInput)
	} else {
		err = d.Client.WaitUntilStackUpdateCompleteWithContext(ctx, stackInput)
	}
	if err != nil {
		return nil, fmt.Errorf("stack %s did not become stable: %w", stackName, err)
	}

	stack, err = d.describeStack(ctx, stackName)
	if err != nil {
		return nil, err
	}
	if stack == nil {
		return nil, fmt.Errorf("stack %s disappeared after deploy", stackName)
	}
	log.Infof("stack is %s", aws.StringValue(stack.StackStatus))
	return stackOutputs(stack), nil
}

// Outputs returns the outputs of the deployed `stackName`.
func (d *Deployer) Outputs(ctx context.Context, stackName string) (map[string]string, error) {
	stack, err := d.describeStack(ctx, stackName)
	if err != nil {
		return nil, err
	}
	if stack == nil {
		return nil, fmt.Errorf("stack %s does not exist", stackName)
	}
	return stackOutputs(stack), nil
}

// describeStack returns nil when the stack does not exist.
func (d *Deployer) describeStack(ctx context.Context, stackName string) (*cloudformation.Stack, error) {
	out, err := d.Client.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(stackName)})
	if err != nil {
		var awsErr awserr.Error
		if errors.As(err, &awsErr) && awsErr.Code() == "ValidationError" && strings.Contains(awsErr.Message(), "does not exist") {
			return nil, nil
		}
		return nil, fmt.Errorf("could not describe stack %s: %w", stackName, err)
	}
	if len(out.Stacks) == 0 {
		return nil, nil
	}
	return out.Stacks[0], nil
}

func (d *Deployer) tags() []*cloudformation.Tag {
	var tags []*cloudformation.Tag
	for _, k := range collectionutil.SortedKeys(d.Tags) {
		tags = append(tags, &cloudformation.Tag{Key: aws.String(k), Value: aws.String(d.Tags[k])})
	}
	return tags
}

func stackOutputs(stack *cloudformation.Stack) map[string]string {
	outputs := make(map[string]string, len(stack.Outputs))
	for _, o := range stack.Outputs {
		outputs[aws.StringValue(o.OutputKey)] = aws.StringValue(o.OutputValue)
	}
	return outputs
}

func isNoChanges(reason string) bool {
	return strings.Contains(reason, "didn't contain changes") || strings.Contains(reason, "No updates are to be performed")
}
