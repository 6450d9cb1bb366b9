package expression

// Tri is a three-valued match result used where only part of the information
// about a join point is known.
type Tri int8

const (
	False Tri = iota
	True
	Undetermined
)

func FromBool(b bool) Tri {
	if b {
		return True
	}
	return False
}

func (t Tri) IsDetermined() bool {
	return t != Undetermined
}

// And is FALSE as soon as one side is a determined FALSE.
func (t Tri) And(other Tri) Tri {
	switch {
	case t == False || other == False:
		return False
	case t == True && other == True:
		return True
	}
	return Undetermined
}

// Or is only determined when both sides are. The class filter never proves
// inclusion through an undetermined branch.
func (t Tri) Or(other Tri) Tri {
	if !t.IsDetermined() || !other.IsDetermined() {
		return Undetermined
	}
	return FromBool(t == True || other == True)
}

func (t Tri) Not() Tri {
	switch t {
	case True:
		return False
	case False:
		return True
	}
	return Undetermined
}

func (t Tri) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "undetermined"
}
