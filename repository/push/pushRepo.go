package pushrepo

type SendReq struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Repo is the push-notification collaborator. Sends are fire-and-forget;
// callers log failures and move on.
type Repo interface {
	Send(req SendReq) error
}
