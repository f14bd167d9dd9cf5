package repositories

// ===== CHANGELIST QUERY =====

// ChangeListQuery describes one admin list page: free-text search across
// SearchFields, exact filters, ordering and pagination. Field names use the
// admin vocabulary ("user", "age", "user__username").
type ChangeListQuery struct {
	Search       string
	SearchFields []string
	Filters      []FieldFilter
	Ordering     []string // "-" prefix for descending
	Limit        int
	Offset       int
}

// FieldFilter is an exact-match filter. IsNull selects NULL (or NOT NULL
// when Value is "0"/"false") instead of comparing Value.
type FieldFilter struct {
	Field  string
	Value  string
	IsNull bool
}

// FilterChoice is one distinct value offered by a list filter
type FilterChoice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ===== ADMIN LOG =====

type AdminLogFilters struct {
	ContentType string `json:"content_type"`
	ObjectID    *uint  `json:"object_id"`
	ActorID     *uint  `json:"actor_id"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
}
