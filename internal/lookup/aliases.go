package lookup

// typeAliases maps source-grammar keywords to the type-tag substrings they
// select. The table is fixed: alias matching depends on exact tag identity
// in the closed taxonomy, so additions here must track the taxonomy.
var typeAliases = map[string][]string{
	"const":       {"variable"},
	"let":         {"variable"},
	"var":         {"variable"},
	"function":    {"function", "arrow_function"},
	"func":        {"function", "arrow_function"},
	"arrow":       {"arrow_function"},
	"class":       {"class"},
	"interface":   {"interface"},
	"type":        {"type_alias"},
	"alias":       {"type_alias"},
	"enum":        {"enum", "enum_member"},
	"method":      {"method", "constructor", "getter", "setter"},
	"constructor": {"constructor"},
	"ctor":        {"constructor"},
	"get":         {"getter"},
	"getter":      {"getter"},
	"set":         {"setter"},
	"setter":      {"setter"},
	"property":    {"property"},
	"prop":        {"property"},
	"field":       {"property"},
	"import":      {"import"},
	"export":      {"export"},
	"comment":     {"comment_line", "comment_block"},
	"blank":       {"blank"},
}

// modifierKeywords are pure modifiers that impose no filter: they match any
// unit unconditionally so phrases copied from source still resolve.
var modifierKeywords = map[string]bool{
	"public":    true,
	"private":   true,
	"protected": true,
	"static":    true,
	"async":     true,
	"abstract":  true,
	"readonly":  true,
	"declare":   true,
	"override":  true,
}
