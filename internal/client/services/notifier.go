package services

// Notifier shows the outcome of an action. *toast.Queue implements it.
type Notifier interface {
	Success(message, title string) string
	Error(message, title string) string
}

type nopNotifier struct{}

func (nopNotifier) Success(string, string) string { return "" }
func (nopNotifier) Error(string, string) string   { return "" }

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
