package domain

var Tables = []interface{}{
	// Key-value primitive
	&KVEntry{},
}
