package hpack

// Entry is a key-value pair in the header table.
type Entry interface {
	Name() string
	Value() string
	Index() int
}

// TableCapacity is the type of the HPACK table capacity.
type TableCapacity uint

// entryOverhead is the per-entry accounting overhead that HPACK mandates.
const entryOverhead = TableCapacity(32)

// dynamicEntry is an entry in the dynamic table.
type dynamicEntry struct {
	name  string
	value string
	table *Table
	// The insert count at the time that this was added to the table.
	inserts int
}

// Index returns the current combined-space index of the entry. Dynamic
// entries start right after the static table and shift towards higher
// indices as newer entries are inserted.
func (hd dynamicEntry) Index() int {
	return hd.table.inserts - hd.inserts + len(staticTable) + 1
}

func (hd dynamicEntry) Name() string {
	return hd.name
}

func (hd dynamicEntry) Value() string {
	return hd.value
}

// Size is the HPACK size of the entry: name plus value plus overhead.
func (hd dynamicEntry) Size() TableCapacity {
	return entryOverhead + TableCapacity(len(hd.name)+len(hd.value))
}

// Table is the combined static and dynamic header table for one direction
// of a connection. Successive header blocks mutate it, so sender and
// receiver stay in lockstep only if every block is processed in order.
// It is not safe for concurrent use.
type Table struct {
	dynamic []*dynamicEntry
	// The total capacity (in HPACK octets) of the dynamic table. This is
	// set by configuration or by a size-update instruction.
	capacity TableCapacity
	// The amount of used capacity.
	used TableCapacity
	// The total number of inserts thus far.
	inserts int
}

// Len is the number of entries in the combined table. Note that because
// HPACK uses a 1-based index, this is the index of the oldest dynamic
// entry.
func (table *Table) Len() int {
	return len(staticTable) + len(table.dynamic)
}

// Get an entry by combined index: 1 through 61 hit the static table,
// anything larger counts into the dynamic table, newest first. Out of
// range produces nil.
func (table *Table) Get(i int) Entry {
	if i <= 0 || i > table.Len() {
		return nil
	}
	if i <= len(staticTable) {
		return staticTable[i-1]
	}
	return table.dynamic[i-len(staticTable)-1]
}

// Evict entries until the used capacity is less than the reduced capacity.
func (table *Table) evictTo(reduced TableCapacity) {
	l := len(table.dynamic)
	for l > 0 && table.used > reduced {
		l--
		table.used -= table.dynamic[l].Size()
	}
	table.dynamic = table.dynamic[:l]
}

// Insert an entry into the table. An entry that is bigger than the whole
// table empties it; that isn't an error.
func (table *Table) Insert(name string, value string) Entry {
	table.inserts++
	entry := dynamicEntry{name, value, table, table.inserts}
	if entry.Size() > table.capacity {
		table.dynamic = table.dynamic[:0]
		table.used = 0
	} else {
		table.evictTo(table.capacity - entry.Size())
		tmp := make([]*dynamicEntry, len(table.dynamic)+1)
		copy(tmp[1:], table.dynamic)
		tmp[0] = &entry
		table.dynamic = tmp
		table.used += entry.Size()
	}
	return &entry
}

// SetCapacity increases or reduces capacity to the set target, evicting
// oldest entries first when shrinking.
func (table *Table) SetCapacity(capacity TableCapacity) {
	table.evictTo(capacity)
	table.capacity = capacity
}

// Capacity returns the configured capacity.
func (table *Table) Capacity() TableCapacity {
	return table.capacity
}

// Used returns the amount of capacity that is in use.
func (table *Table) Used() TableCapacity {
	return table.used
}

// Lookup looks in the table for a matching name and value. This produces
// two return values: the first is a match on both name and value, which is
// often nil. The second is a match on name only, which might also be nil.
// The scan covers the static table, then dynamic entries newest first; an
// exact match anywhere beats an earlier name-only match.
func (table *Table) Lookup(name string, value string) (Entry, Entry) {
	var nameOnly Entry
	for i := 1; i <= table.Len(); i++ {
		entry := table.Get(i)
		if entry.Name() == name {
			if entry.Value() == value {
				return entry, entry
			}
			if nameOnly == nil {
				nameOnly = entry
			}
		}
	}
	return nil, nameOnly
}
