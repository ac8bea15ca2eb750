package shipping

type IDGenerator interface {
	NewID() string
}
