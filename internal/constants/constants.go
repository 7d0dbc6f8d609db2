package constants

// ContextKeyUserID is the gin context key holding the authenticated user ID.
const ContextKeyUserID = "user_id"

// Authentication
const (
	MinPasswordLength = 8
	TokenLifetimeDays = 7
)

// Task field limits
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// RecentActivityLimit is how many activity entries the feed returns.
const RecentActivityLimit = 20
