package schemas

import "embed"

// SchemasFS - JSON-схемы событий и форматов хранения, встроенные в бинарник
//
//go:embed events documents
var SchemasFS embed.FS
