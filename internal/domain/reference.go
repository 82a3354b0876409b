package domain

// Reference declares a link field that must name an existing row of
// TargetType whenever it is set.
type Reference struct {
	ChildType   EntityType
	Field       string
	TargetType  EntityType
	TargetTable string
}

// References is the static table of link fields, keyed by snapshot name.
var References = []Reference{
	{ChildType: EntityProject, Field: "coordinatorId", TargetType: EntityUser, TargetTable: "users"},
	{ChildType: EntityProduct, Field: "designerId", TargetType: EntityUser, TargetTable: "users"},
	{ChildType: EntityNCR, Field: "projectId", TargetType: EntityProject, TargetTable: "projects"},
	{ChildType: EntityVariation, Field: "projectId", TargetType: EntityProject, TargetTable: "projects"},
	{ChildType: EntityPurchaseOrder, Field: "projectId", TargetType: EntityProject, TargetTable: "projects"},
	{ChildType: EntityQuote, Field: "projectId", TargetType: EntityProject, TargetTable: "projects"},
}

// ReferencesFrom returns the link fields of entityType
func ReferencesFrom(entityType EntityType) []Reference {
	var refs []Reference
	for _, ref := range References {
		if ref.ChildType == entityType {
			refs = append(refs, ref)
		}
	}
	return refs
}
