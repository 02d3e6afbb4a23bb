package config

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ConfigScope indicates where a config option is available
type ConfigScope string

const (
	ScopeGlobal ConfigScope = "global" // user preferences
	ScopeLocal  ConfigScope = "local"  // grid.toml
)

// ConfigField represents metadata about a config field extracted from struct tags
type ConfigField struct {
	Key      string      // e.g., "display.page_size"
	Default  string      // default value as string
	Desc     string      // description for help text
	Min      int         // minimum value for int fields (0 = no limit)
	Max      int         // maximum value for int fields (0 = no limit)
	Enum     []string    // allowed values for string fields (empty = any)
	Type     string      // "string", "int" or "bool"
	Category string      // e.g., "display", "features"
	Scope    ConfigScope // where this config is available
	ReadOnly bool        // if true, cannot be set via CLI
}

var globalFieldCache []ConfigField
var localFieldCache []ConfigField

// getGlobalConfigFields extracts all config fields from GlobalConfig using reflection
func getGlobalConfigFields() []ConfigField {
	if globalFieldCache != nil {
		return globalFieldCache
	}
	globalFieldCache = collectFields(&GlobalConfig{}, ScopeGlobal)
	return globalFieldCache
}

// getLocalConfigFields extracts all config fields from Config using reflection
func getLocalConfigFields() []ConfigField {
	if localFieldCache != nil {
		return localFieldCache
	}
	localFieldCache = collectFields(&Config{}, ScopeLocal)
	return localFieldCache
}

func collectFields(cfg any, scope ConfigScope) []ConfigField {
	var fields []ConfigField
	extractFields(reflect.TypeOf(cfg).Elem(), &fields, scope)

	// Sort by key for consistent ordering
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Key < fields[j].Key
	})
	return fields
}

// extractFields recursively extracts config fields from a struct
func extractFields(t reflect.Type, fields *[]ConfigField, scope ConfigScope) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Maps and slices (columns, localization) are edited in the file
		if k := field.Type.Kind(); k == reflect.Map || k == reflect.Slice {
			continue
		}

		configKey := field.Tag.Get("config")
		if configKey == "" {
			if field.Type.Kind() == reflect.Struct && field.Tag.Get("toml") != "" {
				extractFields(field.Type, fields, scope)
			}
			continue
		}

		cf := ConfigField{
			Key:      configKey,
			Default:  field.Tag.Get("default"),
			Desc:     field.Tag.Get("desc"),
			Category: strings.Split(configKey, ".")[0],
			Scope:    scope,
			ReadOnly: field.Tag.Get("readonly") == "true",
		}

		if minStr := field.Tag.Get("min"); minStr != "" {
			cf.Min, _ = strconv.Atoi(minStr)
		}
		if maxStr := field.Tag.Get("max"); maxStr != "" {
			cf.Max, _ = strconv.Atoi(maxStr)
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			cf.Enum = strings.Split(enum, ",")
		}

		switch field.Type.Kind() {
		case reflect.Int:
			cf.Type = "int"
		case reflect.String:
			cf.Type = "string"
		case reflect.Bool:
			cf.Type = "bool"
		}

		*fields = append(*fields, cf)
	}
}

func findField(fields []ConfigField, key string) *ConfigField {
	key = normalizeKey(key)
	for _, f := range fields {
		if f.Key == key {
			return &f
		}
	}
	return nil
}

// normalizeKey handles key aliases
func normalizeKey(key string) string {
	aliases := map[string]string{
		"display.pagesize": "display.page_size",
		"table.pagesize":   "table.page_size",
		"database.timeout": "database.timeout_seconds",
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if normalized, ok := aliases[key]; ok {
		return normalized
	}
	return key
}

// lookupField finds the struct field tagged with key below the category
// struct named by the key's first segment.
func lookupField(cfg any, key string) (reflect.Value, bool) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return reflect.Value{}, false
	}

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	var nestedValue reflect.Value
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		if name == parts[0] {
			nestedValue = v.Field(i)
			break
		}
	}
	if !nestedValue.IsValid() || nestedValue.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	nestedType := nestedValue.Type()
	for i := 0; i < nestedType.NumField(); i++ {
		if nestedType.Field(i).Tag.Get("config") == key {
			return nestedValue.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// getFieldValue gets a field value from a config struct using reflection
func getFieldValue(cfg any, key string) (string, bool) {
	fieldValue, ok := lookupField(cfg, normalizeKey(key))
	if !ok {
		return "", false
	}
	switch fieldValue.Kind() {
	case reflect.String:
		return fieldValue.String(), true
	case reflect.Int:
		return strconv.FormatInt(fieldValue.Int(), 10), true
	case reflect.Bool:
		return strconv.FormatBool(fieldValue.Bool()), true
	}
	return "", false
}

// setFieldValue sets a field value on a config struct using reflection
func setFieldValue(cfg any, key, value string) error {
	key = normalizeKey(key)

	var field *ConfigField
	switch cfg.(type) {
	case *GlobalConfig:
		field = findField(getGlobalConfigFields(), key)
	case *Config:
		field = findField(getLocalConfigFields(), key)
	default:
		return fmt.Errorf("unknown config type")
	}

	if field == nil {
		return fmt.Errorf("unknown config key: %s", key)
	}
	if field.ReadOnly {
		return fmt.Errorf("config key %s is read-only", key)
	}

	fieldValue, ok := lookupField(cfg, key)
	if !ok {
		return fmt.Errorf("field not found: %s", key)
	}

	switch fieldValue.Kind() {
	case reflect.String:
		if len(field.Enum) > 0 && value != "" && !slices.Contains(field.Enum, value) {
			return fmt.Errorf("invalid value %q for %s (one of: %s)", value, key, strings.Join(field.Enum, ", "))
		}
		fieldValue.SetString(value)
		return nil

	case reflect.Int:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		if field.Min != 0 && intVal < field.Min {
			return fmt.Errorf("value %d is below minimum %d", intVal, field.Min)
		}
		if field.Max != 0 && intVal > field.Max {
			return fmt.Errorf("value %d exceeds maximum %d", intVal, field.Max)
		}
		fieldValue.SetInt(int64(intVal))
		return nil

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		fieldValue.SetBool(boolVal)
		return nil
	}

	return fmt.Errorf("field not found: %s", key)
}

// ListKeys returns all available global config keys
func ListKeys() []string {
	fields := getGlobalConfigFields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// ListLocalKeys returns all available grid.toml keys
func ListLocalKeys() []string {
	fields := getLocalConfigFields()
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.ReadOnly {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

func byCategory(fields []ConfigField) map[string][]ConfigField {
	result := make(map[string][]ConfigField)
	for _, f := range fields {
		result[f.Category] = append(result[f.Category], f)
	}
	return result
}

type helpCategory struct {
	key   string
	title string
}

func helpText(fields []ConfigField, categories []helpCategory) string {
	var sb strings.Builder
	grouped := byCategory(fields)

	for _, cat := range categories {
		fields, ok := grouped[cat.key]
		if !ok || len(fields) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("  %s:\n", cat.title))
		for _, f := range fields {
			extra := ""
			switch {
			case f.ReadOnly:
				extra = " (read-only)"
			case f.Default != "":
				extra = fmt.Sprintf(" (default: %s)", f.Default)
			}
			if len(f.Enum) > 0 {
				extra += " [" + strings.Join(f.Enum, "|") + "]"
			}
			sb.WriteString(fmt.Sprintf("    %-35s %s%s\n", f.Key, f.Desc, extra))
		}
		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// GenerateHelpText generates help text for global config options
func GenerateHelpText() string {
	return helpText(getGlobalConfigFields(), []helpCategory{
		{"display", "Display"},
		{"database", "Database (postgres source and grid sql)"},
		{"log", "Logging"},
	})
}

// GenerateLocalHelpText generates help text for grid.toml options
func GenerateLocalHelpText() string {
	return helpText(getLocalConfigFields(), []helpCategory{
		{"table", "Table"},
		{"source", "Source"},
		{"features", "Features"},
	})
}
