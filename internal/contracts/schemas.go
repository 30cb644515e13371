package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"real-estate-system/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ключи схем, которые использует сервис
const (
	ListingsDocumentType    = "RealEstateListingsDocument"
	DeltaEventType          = "RealEstateDeltaEvent"
	ToolResultEventType     = "ToolResultEvent"
	CurrentContractsVersion = "1.0.0"
)

// схемы лежат в двух корнях встроенной ФС, у каждого свой суффикс ключа
var schemaRoots = map[string]string{
	"events":    "Event",
	"documents": "Document",
}

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// Сначала добавляем все схемы как ресурсы, чтобы работали $ref между ними
	for root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			file, err := schemas.SchemasFS.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := compiler.AddResource(path, file); err != nil {
				log.Fatalf("failed to add schema resource %s: %v", path, err)
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and adding schema resources: %v", err)
		}
	}

	for root, suffix := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}

			schema, err := compiler.Compile(path)
			if err != nil {
				log.Printf("WARNING: could not compile schema %s: %v. Skipping.", path, err)
				return nil
			}

			key := generateKeyFromPath(root, suffix, path)
			if key == "" {
				return nil
			}
			compiledSchemas[key] = schema
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and compiling schemas: %v", err)
		}
	}
}

// generateKeyFromPath преобразует путь вида "events/real-estate-delta/v1.json"
// в ключ вида "RealEstateDeltaEvent/1.0.0".
func generateKeyFromPath(root, suffix, path string) string {
	trimmed := strings.TrimPrefix(path, root+"/")
	trimmed = strings.TrimSuffix(trimmed, ".json")

	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 {
		return ""
	}

	caser := cases.Title(language.English)

	var name strings.Builder
	for _, p := range strings.Split(parts[0], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString(suffix)

	version := strings.Replace(parts[1], "v", "", 1) + ".0.0"

	return fmt.Sprintf("%s/%s", name.String(), version)
}

// Validate проверяет тело по схеме с ключом "<schemaType>/<version>"
func Validate(schemaType, version string, body []byte) error {
	key := fmt.Sprintf("%s/%s", schemaType, version)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' version '%s' not found", schemaType, version)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}

	return nil
}

// ValidateEvent принимает тело сообщения и его метаданные и проверяет по схеме
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	return Validate(eventType, eventVersion, body)
}

// ListingsContentValidator проверяет содержимое версий документа перед сохранением
type ListingsContentValidator struct{}

func NewListingsContentValidator() *ListingsContentValidator {
	return &ListingsContentValidator{}
}

func (ListingsContentValidator) ValidateContent(content string) error {
	return Validate(ListingsDocumentType, CurrentContractsVersion, []byte(content))
}
