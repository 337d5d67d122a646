package constants

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

type Category string

const (
	CategoryKitchen Category = "Kitchen"
	CategoryDesk    Category = "Desk"
	CategoryUrgent  Category = "Urgent"
	CategoryGeneral Category = "General"
)

var Categories = []Category{
	CategoryKitchen,
	CategoryDesk,
	CategoryUrgent,
	CategoryGeneral,
}

func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PlaceholderPrefix marks locally-originated task ids that have not been
// confirmed by the backend. Rows carrying it must never be written remotely.
const PlaceholderPrefix = "temp-"

// NoDateKey groups tasks without a due date. It sorts after ISO date keys
// under plain string comparison.
const NoDateKey = "No Date"

const (
	TasksTable = "tasks"
	UsersTable = "users"
)
