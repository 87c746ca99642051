package search

// window is one contiguous byte range [start, end) of the file. Windows
// tile the file exactly; the final window may be shorter than the configured
// cache size.
type window struct {
	start int64
	end   int64
}

func (w window) len() int64 { return w.end - w.start }

// windows tiles [0, length) into cache-sized ranges.
func windows(length, cacheSize int64) []window {
	if length <= 0 {
		return nil
	}

	wins := make([]window, 0, (length+cacheSize-1)/cacheSize)

	for start := int64(0); start < length; start += cacheSize {
		end := start + cacheSize
		if end > length {
			end = length
		}

		wins = append(wins, window{start: start, end: end})
	}

	return wins
}
