package schema

// Default returns the built-in application schema.
func Default() Schema {
	s, err := New(
		Table{Name: "sessions", Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "user_id", Type: TypeString},
			{Name: "expires_at", Type: TypeTimestamp},
			{Name: "created_at", Type: TypeTimestamp},
		}},
		Table{Name: "users", Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "email", Type: TypeString},
			{Name: "password_hash", Type: TypeString},
			{Name: "is_admin", Type: TypeBoolean},
			{Name: "created_at", Type: TypeTimestamp},
			{Name: "updated_at", Type: TypeTimestamp},
		}},
		Table{Name: "permissions", Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "user_id", Type: TypeString},
			{Name: "path", Type: TypeText},
			{Name: "access", Type: TypeString},
		}},
		Table{Name: "files", Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "path", Type: TypeText},
			{Name: "content_type", Type: TypeString},
			{Name: "etag", Type: TypeString},
			{Name: "file_size_bytes", Type: TypeInteger},
			{Name: "created_at", Type: TypeTimestamp},
			{Name: "updated_at", Type: TypeTimestamp},
			{Name: "deleted_at", Type: TypeTimestamp},
		}},
		Table{Name: "api_clients", Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "name", Type: TypeString},
			{Name: "access_key", Type: TypeString},
			{Name: "secret_hash", Type: TypeString},
			{Name: "created_at", Type: TypeTimestamp},
		}},
		Table{Name: "changes", Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "table_name", Type: TypeString},
			{Name: "record_id", Type: TypeString},
			{Name: "operation", Type: TypeString},
			{Name: "payload", Type: TypeJSON},
			{Name: "created_at", Type: TypeTimestamp},
		}},
		Table{Name: "notifications", Columns: []Column{
			{Name: "id", Type: TypeID},
			{Name: "user_id", Type: TypeString},
			{Name: "message", Type: TypeText},
			{Name: "is_read", Type: TypeBoolean},
			{Name: "created_at", Type: TypeTimestamp},
		}},
	)
	if err != nil {
		panic("schema: invalid default schema: " + err.Error())
	}
	return s
}
