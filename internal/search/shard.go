package search

import "bytes"

// shard is a line-aligned byte range handed to one worker. Sequence numbers
// are assigned in file order, independent of how shards are later scheduled.
type shard struct {
	seq   uint64
	start int64  // file offset of data[0]
	data  []byte // whole lines; the final shard of the file may lack a terminator
}

// sharder splits successive windows into shards, carrying the undecided
// trailing partial line of each window over to the next. The carry is the
// only buffering across windows; every other shard aliases the mapping it
// was cut from.
//
// Splitting depends only on the file's bytes and the configured shard size,
// so repeated runs produce identical shard sets.
type sharder struct {
	shardSize int64
	seq       uint64
	carry     []byte
}

func newSharder(shardSize int64) *sharder {
	return &sharder{shardSize: shardSize}
}

// split divides one window's bytes into shards. base is the file offset of
// data[0]; final marks the last window of the file, whose trailing bytes
// form a terminator-less shard instead of a carry.
//
// The cursor advances by shardSize, then to just past the next terminator,
// so no shard boundary ever falls inside a line. A pending carry logically
// extends the first shard: that shard's bytes are assembled into a private
// buffer, since carry and window are not contiguous in memory.
func (s *sharder) split(data []byte, base int64, final bool) []shard {
	n := int64(len(data))
	cur := -int64(len(s.carry)) // negative while inside the carried prefix

	var shards []shard

	for cur < n {
		from := cur + s.shardSize
		if from < 0 {
			from = 0
		}

		cut := n

		if from < n {
			if i := bytes.IndexByte(data[from:], terminator); i >= 0 {
				cut = from + int64(i) + 1
			}
		}

		if cut == n && !final && (n == 0 || data[n-1] != terminator) {
			// The window ends mid-line. Close the shard at the last
			// terminator and retain the remainder for the next window.
			head := cur
			if head < 0 {
				head = 0
			}

			last := bytes.LastIndexByte(data[head:n], terminator)
			if last < 0 {
				// No terminator left: everything from cur on is one
				// partial line. Fold it into the carry and stop.
				s.carry = append(s.carry, data[head:n]...)

				return shards
			}

			cut = head + int64(last) + 1
			shards = append(shards, s.cut(data, base, cur, cut))
			s.carry = append(s.carry[:0], data[cut:n]...)

			return shards
		}

		shards = append(shards, s.cut(data, base, cur, cut))
		cur = cut
	}

	return shards
}

// cut materializes the shard covering logical range [cur, cut) of the
// window, where a negative cur addresses the carried prefix. Consumes the
// carry when the shard starts inside it.
func (s *sharder) cut(data []byte, base, cur, cut int64) shard {
	sh := shard{seq: s.seq, start: base + cur}
	s.seq++

	if cur < 0 {
		buf := make([]byte, 0, int64(len(s.carry))+cut)
		buf = append(buf, s.carry...)
		buf = append(buf, data[:cut]...)
		sh.data = buf
		s.carry = s.carry[:0]
	} else {
		sh.data = data[cur:cut]
	}

	return sh
}
