package server

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// CatalogSchema renders the item catalog's JSON schema, used by the schema
// export tool to keep client-side item validation in sync with the server.
func CatalogSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{DoNotReference: false}
	schema := reflector.Reflect(&ItemDefinition{})
	return json.MarshalIndent(schema, "", "  ")
}

// CatalogExport bundles the schema with the live definitions so clients can
// validate and consume the catalog in one fetch.
type CatalogExport struct {
	Schema json.RawMessage  `json:"schema"`
	Items  []ItemDefinition `json:"items"`
}

func ExportCatalog() (CatalogExport, error) {
	schema, err := CatalogSchema()
	if err != nil {
		return CatalogExport{}, err
	}
	return CatalogExport{Schema: schema, Items: ItemDefinitions()}, nil
}
