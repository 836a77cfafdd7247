package dynamo

// DynamoDB attribute names used in expressions across all repos.
const (
	fieldUserID    = "user_id"
	fieldEmail     = "email"
	fieldStatus    = "status"
	fieldIsPublic  = "is_public"
	fieldIsPrivate = "is_private"
	fieldCreatedBy = "created_by"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldVersion   = "version"
	fieldType      = "type"
	fieldExpiresAt = "expires_at"

	indexEmail            = "email-index"
	indexCreatedByCreated = "created_by-created_at-index"
)
