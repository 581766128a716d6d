package v1

// ActorRole identifies the kind of party authoring a custody event.
// Consumers read traces but never author events, so there is no
// consumer role here.
type ActorRole string

const (
	RoleProducer ActorRole = "PRODUCER"
	RoleCarrier  ActorRole = "CARRIER"
	RoleRetailer ActorRole = "RETAILER"
)

// Valid reports whether r is one of the known actor roles.
func (r ActorRole) Valid() bool {
	switch r {
	case RoleProducer, RoleCarrier, RoleRetailer:
		return true
	}
	return false
}

func (r ActorRole) String() string {
	return string(r)
}
