package types

import "errors"

// UnitType identifies the syntactic construct a SyntaxUnit represents.
// The taxonomy is closed and stable: keyword alias matching and any
// downstream grouping depend on exact tag identity.
type UnitType string

const (
	UnitClass         UnitType = "class"
	UnitFunction      UnitType = "function"
	UnitArrowFunction UnitType = "arrow_function"
	UnitMethod        UnitType = "method"
	UnitProperty      UnitType = "property"
	UnitConstructor   UnitType = "constructor"
	UnitGetter        UnitType = "getter"
	UnitSetter        UnitType = "setter"
	UnitInterface     UnitType = "interface"
	UnitTypeAlias     UnitType = "type_alias"
	UnitEnum          UnitType = "enum"
	UnitEnumMember    UnitType = "enum_member"
	UnitVariable      UnitType = "variable"
	UnitImport        UnitType = "import"
	UnitExport        UnitType = "export"
	UnitCommentLine   UnitType = "comment_line"
	UnitCommentBlock  UnitType = "comment_block"
	UnitBlank         UnitType = "blank"
)

// Sentinel names used when a construct has no resolvable identifier.
const (
	AnonymousName   = "<anonymous>"
	BlankName       = "<blank>"
	ConstructorName = "constructor"
)

// SyntaxUnit represents one extracted syntactic construct, comment, or
// blank line. Positions are 1-indexed and inclusive on both ends. Units
// may nest or overlap (a method lies inside its class); that is intentional.
type SyntaxUnit struct {
	Type        UnitType `json:"type"`
	Name        string   `json:"name"`
	FilePath    string   `json:"filePath"`
	StartLine   int      `json:"startLine"`
	StartColumn int      `json:"startColumn"`
	EndLine     int      `json:"endLine"`
	EndColumn   int      `json:"endColumn"`
	ContentHash string   `json:"contentHash"`
}

// ValidateType checks if the unit type is part of the taxonomy
func (u *SyntaxUnit) ValidateType() error {
	switch u.Type {
	case UnitClass, UnitFunction, UnitArrowFunction, UnitMethod, UnitProperty,
		UnitConstructor, UnitGetter, UnitSetter, UnitInterface, UnitTypeAlias,
		UnitEnum, UnitEnumMember, UnitVariable, UnitImport, UnitExport,
		UnitCommentLine, UnitCommentBlock, UnitBlank:
		return nil
	default:
		return errors.New("invalid unit type")
	}
}

// Validate performs comprehensive validation of the unit
func (u *SyntaxUnit) Validate() error {
	if u.Name == "" {
		return errors.New("unit name is required")
	}

	if err := u.ValidateType(); err != nil {
		return err
	}

	if u.StartLine <= 0 || u.EndLine <= 0 {
		return errors.New("invalid position: line numbers must be positive")
	}

	if u.StartLine > u.EndLine {
		return errors.New("invalid position: start line must be before or equal to end line")
	}

	if u.StartLine == u.EndLine && u.StartColumn > u.EndColumn {
		return errors.New("invalid position: start column past end column on same line")
	}

	return nil
}

// IsComment returns true for the two comment unit types
func (u *SyntaxUnit) IsComment() bool {
	return u.Type == UnitCommentLine || u.Type == UnitCommentBlock
}

// Span returns the number of lines the unit covers
func (u *SyntaxUnit) Span() int {
	return u.EndLine - u.StartLine + 1
}
