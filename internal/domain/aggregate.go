package domain

// AggregateFunc names how child values combine into the parent field.
type AggregateFunc string

// AggregateSum adds the child values, treating NULL as zero.
const AggregateSum AggregateFunc = "SUM"

// AggregateDependency declares a denormalized rollup: ParentTable.ParentColumn
// always equals Func over ChildTable.ValueColumn for the children whose
// LinkColumn points at the parent and that satisfy Filter.
//
// Table, column and filter strings are compiled into SQL verbatim; they come
// from this static table only, never from callers.
type AggregateDependency struct {
	Name         string
	ParentType   EntityType
	ParentTable  string
	ParentColumn string
	ChildType    EntityType
	ChildTable   string
	LinkColumn   string
	ValueColumn  string
	Filter       string
	Func         AggregateFunc

	// LinkField is the child snapshot key holding the parent id.
	LinkField string
	// Triggers are the child snapshot keys whose change can alter the result.
	Triggers []string
}

// ParentID extracts the parent id from a child snapshot; "" means the child
// is not linked.
func (d AggregateDependency) ParentID(child Snapshot) string {
	return child[d.LinkField]
}

// Affected reports whether a change between two child snapshots can alter
// this aggregate.
func (d AggregateDependency) Affected(before, after Snapshot) bool {
	if before[d.LinkField] != after[d.LinkField] {
		return true
	}
	for _, field := range d.Triggers {
		if before[field] != after[field] {
			return true
		}
	}
	return false
}

// AggregateDependencies is the static rollup table.
var AggregateDependencies = []AggregateDependency{
	{
		Name:         "project.ncr_cost",
		ParentType:   EntityProject,
		ParentTable:  "projects",
		ParentColumn: "ncr_cost",
		ChildType:    EntityNCR,
		ChildTable:   "ncrs",
		LinkColumn:   "project_id",
		ValueColumn:  "cost_impact",
		Func:         AggregateSum,
		LinkField:    "projectId",
		Triggers:     []string{"costImpact"},
	},
	{
		Name:         "project.variation_total",
		ParentType:   EntityProject,
		ParentTable:  "projects",
		ParentColumn: "variation_total",
		ChildType:    EntityVariation,
		ChildTable:   "variations",
		LinkColumn:   "project_id",
		ValueColumn:  "amount",
		Filter:       "status <> 'REJECTED'",
		Func:         AggregateSum,
		LinkField:    "projectId",
		Triggers:     []string{"amount", "status"},
	},
	{
		Name:         "project.purchase_order_total",
		ParentType:   EntityProject,
		ParentTable:  "projects",
		ParentColumn: "purchase_order_total",
		ChildType:    EntityPurchaseOrder,
		ChildTable:   "purchase_orders",
		LinkColumn:   "project_id",
		ValueColumn:  "total",
		Filter:       "status <> 'CANCELLED'",
		Func:         AggregateSum,
		LinkField:    "projectId",
		Triggers:     []string{"total", "status"},
	},
}

// DependenciesForChild returns the rollups fed by children of entityType.
func DependenciesForChild(entityType EntityType) []AggregateDependency {
	var deps []AggregateDependency
	for _, dep := range AggregateDependencies {
		if dep.ChildType == entityType {
			deps = append(deps, dep)
		}
	}
	return deps
}
