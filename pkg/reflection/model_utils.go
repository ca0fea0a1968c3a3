package reflection

import (
	"reflect"
	"strings"

	"gorm.io/gorm/schema"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/modelregistry"
)

// naming mirrors the default GORM naming strategy. Bun's default table naming
// (underscored, pluralised) produces the same names for plain struct types.
var naming = schema.NamingStrategy{}

type PrimaryKeyNameProvider interface {
	GetIDName() string
}

// ModelType unwraps pointers, slices and arrays down to the model's struct type.
// It returns nil when model is not struct based.
func ModelType(model any) reflect.Type {
	typ, ok := model.(reflect.Type)
	if !ok {
		typ = reflect.TypeOf(model)
	}
	for typ != nil && (typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Slice || typ.Kind() == reflect.Array) {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil
	}
	return typ
}

// NewModel returns a pointer to a zero value of the model's struct type.
func NewModel(model any) any {
	typ := ModelType(model)
	if typ == nil {
		return nil
	}
	return reflect.New(typ).Interface()
}

// NewModelSlice returns a pointer to an empty slice of pointers to the model's
// struct type, suitable as a scan destination.
func NewModelSlice(model any) any {
	typ := ModelType(model)
	if typ == nil {
		return nil
	}
	return reflect.New(reflect.SliceOf(reflect.PointerTo(typ))).Interface()
}

// GetTableName resolves the table a model maps to.
// Priority: TableName() method -> bun "table:" tag on an embedded BaseModel ->
// GORM naming strategy (snake_case, plural). Any schema prefix is stripped.
func GetTableName(model any) string {
	typ := ModelType(model)
	if typ == nil {
		return ""
	}

	if provider, ok := reflect.New(typ).Interface().(common.TableNameProvider); ok {
		if name := provider.TableName(); name != "" {
			_, table := common.ParseTableName(name)
			return table
		}
	}

	if name := bunTableFromType(typ); name != "" {
		_, table := common.ParseTableName(name)
		return table
	}

	return naming.TableName(typ.Name())
}

// bunTableFromType reads `bun:"table:name"` from an embedded field.
func bunTableFromType(typ reflect.Type) string {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.Anonymous {
			continue
		}
		for _, part := range strings.Split(field.Tag.Get("bun"), ",") {
			if name, found := strings.CutPrefix(strings.TrimSpace(part), "table:"); found {
				return name
			}
		}
	}
	return ""
}

// GetPrimaryKeyName extracts the primary key column name from a model
// It first checks if the model implements PrimaryKeyNameProvider (GetIDName method)
// Falls back to reflection to find bun:",pk" tag, then gorm:"primaryKey" tag,
// and finally to a field named ID.
func GetPrimaryKeyName(model any) string {
	if reflect.TypeOf(model) == nil {
		return ""
	}
	// If we are given a string model name, look up the model
	if name, ok := model.(string); ok {
		m, err := modelregistry.GetModelByName(name)
		if err != nil {
			return ""
		}
		model = m
	}

	if provider, ok := model.(PrimaryKeyNameProvider); ok {
		return provider.GetIDName()
	}

	typ := ModelType(model)
	if typ == nil {
		return ""
	}

	if pkName := findPrimaryKeyNameFromType(typ, "bun"); pkName != "" {
		return pkName
	}
	if pkName := findPrimaryKeyNameFromType(typ, "gorm"); pkName != "" {
		return pkName
	}
	if field, ok := findField(typ, "ID"); ok {
		return ColumnName(field)
	}
	return ""
}

// findPrimaryKeyNameFromType recursively searches for the primary key field name in a struct type
func findPrimaryKeyNameFromType(typ reflect.Type, ormType string) string {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		if field.Anonymous {
			fieldType := field.Type
			if fieldType.Kind() == reflect.Pointer {
				fieldType = fieldType.Elem()
			}
			if fieldType.Kind() == reflect.Struct {
				if pkName := findPrimaryKeyNameFromType(fieldType, ormType); pkName != "" {
					return pkName
				}
			}
			continue
		}

		switch ormType {
		case "gorm":
			if strings.Contains(field.Tag.Get("gorm"), "primaryKey") {
				return ColumnName(field)
			}
		case "bun":
			if hasBunFlag(field.Tag.Get("bun"), "pk") {
				return ColumnName(field)
			}
		}
	}

	return ""
}

// GetModelColumns extracts all column names from a model using reflection.
// Relation fields (structs, slices of structs) and fields tagged "-" are skipped.
// This function recursively processes embedded structs to include their fields
func GetModelColumns(model any) []string {
	var columns []string

	modelType := ModelType(model)
	if modelType == nil {
		return columns
	}

	collectColumnsFromType(modelType, &columns)

	return columns
}

// collectColumnsFromType recursively collects column names from a struct type and its embedded fields
func collectColumnsFromType(typ reflect.Type, columns *[]string) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		if field.Anonymous {
			fieldType := field.Type
			if fieldType.Kind() == reflect.Pointer {
				fieldType = fieldType.Elem()
			}
			if fieldType.Kind() == reflect.Struct {
				collectColumnsFromType(fieldType, columns)
				continue
			}
		}

		if !field.IsExported() || isRelationField(field) || isIgnored(field) {
			continue
		}

		*columns = append(*columns, ColumnName(field))
	}
}

// ColumnName returns the database column for a struct field.
// Priority: bun tag -> gorm column: tag -> GORM naming strategy.
func ColumnName(field reflect.StructField) string {
	if colName := ExtractColumnFromBunTag(field.Tag.Get("bun")); colName != "" && colName != "-" {
		return colName
	}
	if colName := ExtractColumnFromGormTag(field.Tag.Get("gorm")); colName != "" {
		return colName
	}
	return naming.ColumnName("", field.Name)
}

// ExtractColumnFromGormTag extracts the column name from a gorm tag
// Example: "column:id;primaryKey" -> "id"
func ExtractColumnFromGormTag(tag string) string {
	return extractGormTagValue(tag, "column")
}

// ExtractColumnFromBunTag extracts the column name from a bun tag
// Example: "id,pk" -> "id"
// Example: ",pk" -> "" (falls back to the naming strategy)
func ExtractColumnFromBunTag(tag string) string {
	lower := strings.ToLower(tag)
	if strings.HasPrefix(lower, "table:") || strings.HasPrefix(lower, "rel:") || strings.HasPrefix(lower, "join:") || strings.HasPrefix(lower, "m2m:") {
		return ""
	}
	parts := strings.Split(tag, ",")
	if len(parts) > 0 && parts[0] != "" {
		return strings.TrimSpace(parts[0])
	}
	return ""
}

// extractGormTagValue returns the value of key in a "k1:v1;k2:v2" gorm tag.
// Keys are matched case-insensitively, as GORM does.
func extractGormTagValue(tag, key string) string {
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		k, v, found := strings.Cut(part, ":")
		if found && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// bunTagValue returns the value of key in a "col,k1:v1,flag" bun tag.
func bunTagValue(tag, key string) string {
	for _, part := range strings.Split(tag, ",") {
		if v, found := strings.CutPrefix(strings.TrimSpace(part), key+":"); found {
			return v
		}
	}
	return ""
}

func hasBunFlag(tag, flag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[min(1, len(parts)):] {
		if strings.TrimSpace(part) == flag {
			return true
		}
	}
	return false
}

func isIgnored(field reflect.StructField) bool {
	return field.Tag.Get("bun") == "-" || field.Tag.Get("gorm") == "-"
}

// isRelationField reports whether a field holds associated records rather than
// a column value.
func isRelationField(field reflect.StructField) bool {
	if bunTagValue(field.Tag.Get("bun"), "rel") != "" {
		return true
	}
	typ := field.Type
	for typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Slice {
		if typ.Kind() == reflect.Slice && typ.Elem().Kind() == reflect.Uint8 {
			return false
		}
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return false
	}
	// time.Time, sql.Null* and similar scanner types are plain values.
	if typ.PkgPath() == "time" || strings.HasPrefix(typ.Name(), "Null") {
		return false
	}
	if typ.Name() == "BaseModel" {
		return false
	}
	return true
}

// findField finds a field by Go name, searching embedded structs.
func findField(typ reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous {
			fieldType := field.Type
			if fieldType.Kind() == reflect.Pointer {
				fieldType = fieldType.Elem()
			}
			if fieldType.Kind() == reflect.Struct {
				if f, ok := findField(fieldType, name); ok {
					return f, true
				}
			}
			continue
		}
		if field.Name == name {
			return field, true
		}
	}
	return reflect.StructField{}, false
}
