package notebook

import "fmt"

type (
	DuplicateLogin struct {
		Login string
	}

	UserNotFound struct {
		Login string
	}

	SessionNotFound struct {
		ID uint64
	}

	ListNotFound struct {
		ID uint64
	}

	ItemNotFound struct {
		ID uint64
	}

	InvalidRole struct {
		Value string
	}

	InvalidItemState struct {
		Value string
	}

	// Denied indicates the subject holds no grant on the list, or a
	// grant below the required role. It deliberately does not say which.
	Denied struct {
		Min Role
	}
)

func (d DuplicateLogin) Error() string {
	return fmt.Sprintf("login %v is already taken", d.Login)
}

func (u UserNotFound) Error() string {
	return fmt.Sprintf("user %v not found", u.Login)
}

func (s SessionNotFound) Error() string {
	return fmt.Sprintf("session %v not found", s.ID)
}

func (l ListNotFound) Error() string {
	return fmt.Sprintf("list %v not found", l.ID)
}

func (i ItemNotFound) Error() string {
	return fmt.Sprintf("item %v not found", i.ID)
}

func (i InvalidRole) Error() string {
	return fmt.Sprintf("%v is not a valid role", i.Value)
}

func (i InvalidItemState) Error() string {
	return fmt.Sprintf("%v is not a valid item state", i.Value)
}

func (d Denied) Error() string {
	return fmt.Sprintf("subject does not hold %v or higher on this list", d.Min)
}
