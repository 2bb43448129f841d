package audit

import "time"

// TimelineFilters holds the activity log filters.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// TimelineRow is one line of the activity log.
type TimelineRow struct {
	At       time.Time
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]string
}

// PagingInfo is simple previous/next paging metadata.
type PagingInfo struct {
	Page     int
	HasNext  bool
	PageSize int
	PrevPage int
	NextPage int
}

// FiltersViewModel carries filter values back to the template.
type FiltersViewModel struct {
	From   time.Time
	To     time.Time
	Actor  string
	Entity string
	Action string
}

// ViewModel is the activity log page.
type ViewModel struct {
	Filters  FiltersViewModel
	Rows     []TimelineRow
	Paging   PagingInfo
	Entities []string
	Actions  []string
	Error    string
	PrevURL  string
	NextURL  string
	Export   string
}

// Entities lists the entity names the dashboard records.
func Entities() []string {
	return []string{
		"session", "product", "category", "manufacturer", "unit", "payment_method",
		"customer", "supplier", "sale", "quotation", "purchase", "credit", "user",
	}
}

// Actions lists the recorded action names.
func Actions() []string {
	return []string{ActionLogin, ActionLogout, ActionCreate, ActionUpdate, ActionDelete, ActionPay, ActionImport, ActionConvert}
}
