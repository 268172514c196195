package balances

// ChangeSet is the minimal set of writes turning the persisted table into the
// computed one. The three sets never share a key.
type ChangeSet struct {
	// Insert holds computed rows whose key is not persisted
	Insert Table
	// Update holds computed rows, carrying the persisted ID, whose tracked fields differ
	Update Table
	// Delete holds persisted rows whose key is no longer computed
	Delete Table
}

// Empty reports whether applying the change set would write nothing
func (c ChangeSet) Empty() bool {
	return len(c.Insert) == 0 && len(c.Update) == 0 && len(c.Delete) == 0
}

// Diff compares computed against persisted by (category, year). Rows present
// in both are updated when any of fields or LatestCheck differs.
func Diff(computed, persisted Table, fields []Field) ChangeSet {
	var cs ChangeSet

	if len(persisted) == 0 {
		cs.Insert = append(Table(nil), computed...)
		return cs
	}
	if len(computed) == 0 {
		cs.Delete = append(Table(nil), persisted...)
		return cs
	}

	stored := persisted.index()
	wanted := computed.index()

	for _, r := range persisted {
		if _, ok := wanted[r.Key]; !ok {
			cs.Delete = append(cs.Delete, r)
		}
	}

	for _, r := range computed {
		old, ok := stored[r.Key]
		if !ok {
			cs.Insert = append(cs.Insert, r)
			continue
		}
		if rowChanged(r, old, fields) {
			upd := r.Clone()
			upd.ID = old.ID
			cs.Update = append(cs.Update, upd)
		}
	}

	return cs
}

func rowChanged(computed, persisted Row, fields []Field) bool {
	for _, f := range fields {
		if computed.Get(f) != persisted.Get(f) {
			return true
		}
	}
	return !sameCheck(computed, persisted)
}

func sameCheck(a, b Row) bool {
	if a.LatestCheck == nil || b.LatestCheck == nil {
		return a.LatestCheck == nil && b.LatestCheck == nil
	}
	return a.LatestCheck.Equal(*b.LatestCheck)
}
