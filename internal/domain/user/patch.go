package user

// Patch carries a partial update. A nil field leaves the stored value as is.
type Patch struct {
	Name  *string
	Email *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil
}

// Apply copies the set fields of p onto u.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}
