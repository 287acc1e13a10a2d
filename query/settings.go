package query

// Settings tunes how operations are built.
type Settings struct {
	// UseSchemaDescription attaches field descriptions to operation proxies.
	UseSchemaDescription bool `yaml:"use_schema_description" json:"use_schema_description"`
	// AllowAutoLookup selects fields automatically when none are given.
	AllowAutoLookup bool `yaml:"allow_auto_lookup" json:"allow_auto_lookup"`
	// LookupRecursionDepth is how many object levels automatic selection descends.
	LookupRecursionDepth int `yaml:"lookup_recursion_depth" json:"lookup_recursion_depth"`
	// ValidateVariables rejects operation inputs the schema does not declare.
	ValidateVariables bool `yaml:"validate_variables" json:"validate_variables"`
}

func DefaultSettings() Settings {
	return Settings{
		UseSchemaDescription: true,
		AllowAutoLookup:      true,
		LookupRecursionDepth: 1,
		ValidateVariables:    true,
	}
}
