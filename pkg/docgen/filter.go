package docgen

import (
	"github.com/matzehuels/nodedocs/pkg/catalog"
)

// Spawner kinds that are never documented.
var excludedSpawnerKinds = map[catalog.SpawnerKind]bool{
	catalog.SpawnerVariable:  true,
	catalog.SpawnerDelegate:  true,
	catalog.SpawnerBound:     true,
	catalog.SpawnerComponent: true,
}

// Spawner kinds that are not documented when the source is a blueprint.
var blueprintExcludedSpawnerKinds = map[catalog.SpawnerKind]bool{
	catalog.SpawnerEvent: true,
}

// Node kinds that are never documented.
var excludedNodeKinds = map[catalog.NodeKind]bool{
	catalog.NodeDynamicCast: true,
	catalog.NodeMessage:     true,
}

// Function metadata keys that exclude a function spawner.
var excludedFunctionMeta = []string{"BlueprintAutocast"}

// IsSpawnerDocumentable reports whether s should be spawned and documented.
// isBlueprint is true when the spawner's source object is a blueprint.
func IsSpawnerDocumentable(s *catalog.Spawner, isBlueprint bool) bool {
	if s == nil {
		return false
	}
	if excludedSpawnerKinds[s.Kind] {
		return false
	}
	if isBlueprint && blueprintExcludedSpawnerKinds[s.Kind] {
		return false
	}
	if excludedNodeKinds[s.NodeKind] {
		return false
	}

	if s.Kind == catalog.SpawnerFunction && s.Function != nil {
		fn := s.Function
		// Blueprint events carry no access specifier.
		if !fn.BlueprintEvent && fn.Access != catalog.AccessPublic && fn.Access != catalog.AccessProtected {
			return false
		}
		for _, key := range excludedFunctionMeta {
			if fn.HasMeta(key) {
				return false
			}
		}
	}
	return true
}
