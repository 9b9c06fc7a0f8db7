package construct

// Intrinsic values are resolved by the provisioning engine at deploy time. They can be nested in
// [Properties] anywhere a literal is accepted.
type (
	// Join concatenates Values with Delimiter.
	Join struct {
		Delimiter string
		Values    []any
	}

	// Sub substitutes `${Name}` placeholders in String. Variables supplies values for names that
	// are not resources or pseudo parameters.
	Sub struct {
		String    string
		Variables map[string]any
	}

	// Select picks the Index-th element of List.
	Select struct {
		Index int
		List  any
	}

	// GetAZs lists the availability zones of Region (the current region when empty).
	GetAZs struct {
		Region string
	}

	// ImportValue reads an export of another deployed stack.
	ImportValue struct {
		Name any
	}

	// PseudoParameter is a value supplied by the engine, such as the region or account id.
	PseudoParameter string
)

const (
	Region    PseudoParameter = "AWS::Region"
	AccountId PseudoParameter = "AWS::AccountId"
	Partition PseudoParameter = "AWS::Partition"
	URLSuffix PseudoParameter = "AWS::URLSuffix"
	StackName PseudoParameter = "AWS::StackName"
)

// JoinOf is a convenience for an empty-delimiter [Join].
func JoinOf(values ...any) Join {
	return Join{Values: values}
}

// References returns every resource referenced from `props`, including through intrinsics, in the
// order they are found (map keys are walked sorted). Duplicates are removed.
func References(props Properties) []ResourceId {
	var ids []ResourceId
	seen := make(map[ResourceId]struct{})
	add := func(id ResourceId) {
		if _, ok := seen[id]; ok || id.IsZero() {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	_ = WalkProperties(props, func(_ string, value any) error {
		switch value := value.(type) {
		case PropertyRef:
			add(value.Resource)
		case ResourceId:
			add(value)
		}
		return nil
	})
	return ids
}
