package zendesk

import "time"

// Action is one effect of a macro, e.g. setting a field or writing the
// ticket's reply text.
type Action struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Macro 帮助台平台上的快捷回复定义
type Macro struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Active    bool      `json:"active"`
	Actions   []Action  `json:"actions"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}

// macrosPage is one page of the cursor-paginated macro listing.
type macrosPage struct {
	Macros []Macro `json:"macros"`
	Meta   struct {
		HasMore     bool   `json:"has_more"`
		AfterCursor string `json:"after_cursor"`
	} `json:"meta"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}
