package entities

// Identity is the authenticated caller. The zero value is anonymous; handlers
// never pass a sentinel string around, they check Anonymous() at the boundary.
type Identity struct {
	Uploader string
}

func NewIdentity(uploader string) Identity {
	return Identity{Uploader: uploader}
}

func (i Identity) Anonymous() bool {
	return i.Uploader == ""
}

func (i Identity) String() string {
	if i.Anonymous() {
		return "<anonymous>"
	}
	return i.Uploader
}
