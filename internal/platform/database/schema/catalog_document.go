package schema

// CatalogDocumentTable represents the 'catalog.document' table
type CatalogDocumentTable struct {
	Table      string
	Collection string
	ID         string
	Body       string
	UpdatedAt  string
}

// CatalogDocument is the schema definition for catalog.document
var CatalogDocument = CatalogDocumentTable{
	Table:      "catalog.document",
	Collection: "collection",
	ID:         "id",
	Body:       "body",
	UpdatedAt:  "updatedat",
}

func (t CatalogDocumentTable) Columns() []string {
	return []string{t.Collection, t.ID, t.Body, t.UpdatedAt}
}
