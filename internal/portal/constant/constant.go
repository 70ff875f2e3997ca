package constant

// fiber Locals keys shared between routers and middleware.
const (
	DETAIL    = "detail"
	OPERATION = "operation"
	CLAIMS    = "claims"
)

// redis key prefixes
const (
	UserInfoKey = "marina:user:token:"
	PermRowKey  = "marina:perm:row:"
)

// event names on the in-process bus
const (
	EventRoleChanged = "role.changed"
)
