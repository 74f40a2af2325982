// Package dashboard renders the user management page and drives it through
// the /users endpoints.
package dashboard

import (
	"strings"
	"time"
)

// Phase is the page's current activity.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseLoaded     Phase = "loaded"
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
)

// Banner display times.
const (
	SuccessTTL     = 3 * time.Second
	SubmitErrorTTL = 5 * time.Second
	DeleteErrorTTL = 3 * time.Second
)

const msgRequired = "Name and email are required"

// Notice codes carry a success banner across the post/redirect/get hop.
const (
	NoticeCreated = "created"
	NoticeUpdated = "updated"
	NoticeDeleted = "deleted"
)

var notices = map[string]string{
	NoticeCreated: "User created successfully",
	NoticeUpdated: "User updated successfully",
	NoticeDeleted: "User deleted successfully",
}

// Banner is a message shown above the form. A zero TTL stays until the next page.
type Banner struct {
	Message string
	TTL     time.Duration
}

// Form holds the create/edit form inputs.
type Form struct {
	Name  string
	Email string
}

// Submission is the write produced by a valid form submit.
// ID is zero for a create.
type Submission struct {
	ID    int64
	Name  string
	Email string
}

// IsUpdate reports whether the submission targets an existing user.
func (s Submission) IsUpdate() bool {
	return s.ID != 0
}

// State is the view state of one page render. It is not safe for
// concurrent use and is never shared between requests.
type State struct {
	Phase     Phase
	Users     []User
	Form      Form
	EditingID int64
	Error     *Banner
	Success   *Banner
	Notice    string // code of Success, if it came from a write
}

// NewState returns a state for a page that has not been mounted yet.
func NewState() *State {
	return &State{Phase: PhaseLoading}
}

// Editing reports whether the form targets an existing user.
func (s *State) Editing() bool {
	return s.EditingID != 0
}

// Mount starts loading the user list.
func (s *State) Mount() {
	s.Phase = PhaseLoading
}

// Loaded populates the table.
func (s *State) Loaded(users []User) {
	if users == nil {
		users = []User{}
	}
	s.Users = users
	s.Error = nil
	s.settle()
}

// LoadFailed leaves the table empty and shows the failure.
func (s *State) LoadFailed(err error) {
	s.Users = []User{}
	s.Error = &Banner{Message: err.Error()}
	s.settle()
}

// Edit loads u into the form and makes it the edit target.
func (s *State) Edit(u User) {
	s.EditingID = u.ID
	s.Form = Form{Name: u.Name, Email: u.Email}
	s.Phase = PhaseEditing
}

// Cancel clears the edit target and the form.
func (s *State) Cancel() {
	s.EditingID = 0
	s.Form = Form{}
	s.settle()
}

// Submit validates the form. On success the page moves to submitting and
// the returned Submission says which write to issue.
func (s *State) Submit() (Submission, bool) {
	if strings.TrimSpace(s.Form.Name) == "" || strings.TrimSpace(s.Form.Email) == "" {
		s.Error = &Banner{Message: msgRequired}
		return Submission{}, false
	}

	s.Phase = PhaseSubmitting
	return Submission{
		ID:    s.EditingID,
		Name:  s.Form.Name,
		Email: s.Form.Email,
	}, true
}

// SubmitSucceeded clears the form and target and reloads the list.
func (s *State) SubmitSucceeded() {
	code := NoticeCreated
	if s.Editing() {
		code = NoticeUpdated
	}
	s.EditingID = 0
	s.Form = Form{}
	s.Notify(code)
	s.Phase = PhaseLoading
}

// SubmitFailed keeps the form as typed and shows the failure.
func (s *State) SubmitFailed(err error) {
	s.Error = &Banner{Message: err.Error(), TTL: SubmitErrorTTL}
	s.settle()
}

// DeleteSucceeded reloads the list.
func (s *State) DeleteSucceeded() {
	s.Notify(NoticeDeleted)
	s.Phase = PhaseLoading
}

// DeleteFailed shows the failure.
func (s *State) DeleteFailed(err error) {
	s.Error = &Banner{Message: err.Error(), TTL: DeleteErrorTTL}
	s.settle()
}

// Notify shows the success banner for a notice code. Unknown codes are ignored.
func (s *State) Notify(code string) {
	msg, ok := notices[code]
	if !ok {
		return
	}
	s.Notice = code
	s.Success = &Banner{Message: msg, TTL: SuccessTTL}
}

func (s *State) settle() {
	if s.Editing() {
		s.Phase = PhaseEditing
		return
	}
	s.Phase = PhaseLoaded
}
