package querylint

// ResultColumn describes one output column of a validated query.
type ResultColumn struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Parameter describes one placeholder of a validated query. Name is empty
// for positional placeholders; Position is the zero-based declaration order
// for both forms.
type Parameter struct {
	Name     string
	Position int
	Type     ColumnType
}

// ValidatedQuery is the immutable success artifact of a validation:
// the statically inferred shape of a query's outputs and inputs.
type ValidatedQuery struct {
	ResultColumns []ResultColumn
	Parameters    []Parameter
}

// ValidationResult is the outcome of one Validate call. Exactly one of
// Query (success) or Errors (failure) is populated; Warnings may accompany
// a success (advisories such as duplicate expanded column names).
type ValidationResult struct {
	Query    *ValidatedQuery
	Errors   []string
	Warnings []string
}

// Valid reports whether the result is the success variant.
func (r ValidationResult) Valid() bool {
	return r.Query != nil
}

// Success wraps a validated query as a successful result.
// A nil query is a caller defect, reported as an error result rather
// than a half-populated success.
func Success(query *ValidatedQuery, warnings []string) ValidationResult {
	if query == nil {
		return Failure(ErrNilQuery.Error())
	}

	return ValidationResult{Query: query, Warnings: warnings}
}

// Failure wraps one or more error messages as a failed result.
func Failure(messages ...string) ValidationResult {
	if messages == nil {
		messages = []string{}
	}

	return ValidationResult{Errors: messages}
}
