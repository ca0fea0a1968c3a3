package reflection

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bitechdev/QuerySpec/pkg/common"
)

// GetRelationInfo describes how model joins to the named relation.
//
// The relation is matched against the Go field name, its JSON name and its
// snake_case form. Join keys come from, in order:
//   - bun `rel:` tags with `join:local=foreign`
//   - gorm `foreignKey:` / `references:` tags
//   - the `{relation}_id` -> `id` convention (belongs-to)
func GetRelationInfo(model any, relation string) (*common.RelationInfo, error) {
	typ := ModelType(model)
	if typ == nil {
		return nil, common.ErrNoModel
	}

	field, ok := findRelationField(typ, relation)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", common.ErrUnknownRelation, relation, typ.Name())
	}

	relatedType := ModelType(field.Type)
	if relatedType == nil {
		return nil, fmt.Errorf("%w: %s on %s is not a struct relation", common.ErrUnknownRelation, relation, typ.Name())
	}

	info := &common.RelationInfo{
		Name:         relation,
		FieldName:    field.Name,
		RelatedTable: GetTableName(relatedType),
		RelatedModel: reflect.New(relatedType).Interface(),
	}

	isMany := field.Type.Kind() == reflect.Slice || (field.Type.Kind() == reflect.Pointer && field.Type.Elem().Kind() == reflect.Slice)

	if fromBunTag(info, field.Tag.Get("bun")) {
		return info, nil
	}
	fromGormTag(info, typ, relatedType, field, isMany)
	return info, nil
}

func findRelationField(typ reflect.Type, relation string) (reflect.StructField, bool) {
	snake := common.ToSnakeCase(relation)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous {
			fieldType := field.Type
			if fieldType.Kind() == reflect.Pointer {
				fieldType = fieldType.Elem()
			}
			if fieldType.Kind() == reflect.Struct && fieldType.Name() != "BaseModel" {
				if f, ok := findRelationField(fieldType, relation); ok {
					return f, true
				}
			}
			continue
		}
		if !field.IsExported() || !isRelationField(field) {
			continue
		}
		jsonName, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if strings.EqualFold(field.Name, relation) ||
			(jsonName != "" && jsonName == relation) ||
			common.ToSnakeCase(field.Name) == snake {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

// fromBunTag fills join keys from `bun:"rel:belongs-to,join:author_id=id"`.
func fromBunTag(info *common.RelationInfo, tag string) bool {
	rel := bunTagValue(tag, "rel")
	join := bunTagValue(tag, "join")
	if rel == "" || join == "" {
		return false
	}
	local, foreign, found := strings.Cut(join, "=")
	if !found {
		return false
	}
	info.LocalKey = strings.TrimSpace(local)
	info.ForeignKey = strings.TrimSpace(foreign)
	switch rel {
	case "has-many":
		info.RelationType = common.RelationHasMany
	case "has-one":
		info.RelationType = common.RelationHasOne
	default:
		info.RelationType = common.RelationBelongsTo
	}
	return true
}

// fromGormTag fills join keys following GORM's association rules. The field
// named by foreignKey lives on the owner for belongs-to and on the related
// model for has-one/has-many.
func fromGormTag(info *common.RelationInfo, owner, related reflect.Type, field reflect.StructField, isMany bool) {
	tag := field.Tag.Get("gorm")
	fkField := extractGormTagValue(tag, "foreignKey")
	refField := extractGormTagValue(tag, "references")

	if isMany {
		info.RelationType = common.RelationHasMany
	} else if fkField != "" {
		if _, ok := findField(owner, fkField); ok {
			info.RelationType = common.RelationBelongsTo
		} else {
			info.RelationType = common.RelationHasOne
		}
	} else if _, ok := findField(owner, field.Name+"ID"); ok {
		info.RelationType = common.RelationBelongsTo
		fkField = field.Name + "ID"
	} else {
		info.RelationType = common.RelationHasOne
	}

	switch info.RelationType {
	case common.RelationBelongsTo:
		if fkField == "" {
			fkField = field.Name + "ID"
		}
		if refField == "" {
			refField = "ID"
		}
		info.LocalKey = columnOf(owner, fkField, common.ToSnakeCase(field.Name)+"_id")
		info.ForeignKey = columnOf(related, refField, "id")
	default:
		if fkField == "" {
			fkField = owner.Name() + "ID"
		}
		if refField == "" {
			refField = "ID"
		}
		info.LocalKey = columnOf(owner, refField, "id")
		info.ForeignKey = columnOf(related, fkField, common.ToSnakeCase(owner.Name())+"_id")
	}
}

// columnOf returns the column of the named Go field, or fallback when the
// struct has no such field.
func columnOf(typ reflect.Type, fieldName, fallback string) string {
	if field, ok := findField(typ, fieldName); ok {
		return ColumnName(field)
	}
	return fallback
}
