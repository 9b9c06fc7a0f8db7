package construct

type (
	Resource struct {
		ID         ResourceId
		Properties Properties
		// RemovalPolicy decides what the provisioning engine does with the resource once it is
		// no longer declared. Empty means the engine default.
		RemovalPolicy RemovalPolicy
	}

	RemovalPolicy string
)

const (
	RemovalPolicyDestroy  RemovalPolicy = "destroy"
	RemovalPolicyRetain   RemovalPolicy = "retain"
	RemovalPolicySnapshot RemovalPolicy = "snapshot"
)

func CreateResource(id ResourceId) *Resource {
	return &Resource{
		ID:         id,
		Properties: make(Properties),
	}
}
