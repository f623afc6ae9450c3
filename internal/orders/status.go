package orders

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipping   Status = "SHIPPING"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusReturned   Status = "RETURNED"
)

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

type Actor struct {
	UserID string
	Role   Role
}

// validNext: transition table plus roles yang boleh melakukannya.
// Authorization is data, not branching prose.
var validNext = map[Status]map[Status][]Role{
	StatusPending: {
		StatusConfirmed: {RoleSeller, RoleAdmin},
		StatusCancelled: {RoleBuyer, RoleAdmin},
	},
	StatusConfirmed: {
		StatusProcessing: {RoleSeller, RoleAdmin},
		StatusCancelled:  {RoleBuyer, RoleAdmin},
	},
	StatusProcessing: {
		StatusShipping: {RoleSeller, RoleAdmin},
	},
	StatusShipping: {
		StatusDelivered: {RoleSeller, RoleAdmin},
	},
	StatusDelivered: {
		StatusReturned: {RoleAdmin},
	},
	StatusCancelled: {},
	StatusReturned:  {},
}

func CanTransition(from, to Status) bool {
	_, ok := validNext[from][to]
	return ok
}

func roleAllowed(from, to Status, r Role) bool {
	for _, allowed := range validNext[from][to] {
		if allowed == r {
			return true
		}
	}
	return false
}

// Authorize checks the transition table plus the single ownership predicate:
// sellers act only on their own orders, buyers only on theirs, admin on any.
func Authorize(a Actor, o *Order, to Status) error {
	if !CanTransition(o.Status, to) {
		return &InvalidTransitionError{From: o.Status, To: to}
	}
	if !roleAllowed(o.Status, to, a.Role) {
		return ErrAccessDenied
	}
	switch a.Role {
	case RoleSeller:
		if a.UserID != o.SellerID {
			return ErrAccessDenied
		}
	case RoleBuyer:
		if a.UserID != o.BuyerID {
			return ErrAccessDenied
		}
	}
	return nil
}
