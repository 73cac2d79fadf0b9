package knowledge

import "strings"

// ChunkText splits text into overlapping chunks of roughly chunkSize
// characters. When a chunk would split mid-sentence, the cut moves back to the
// last period or newline, provided that boundary sits past the halfway point
// of the chunk. Each chunk is whitespace-trimmed; chunks of minLength
// characters or fewer are dropped and reported in the skipped count.
//
// Offsets count runes, not bytes, so multi-byte text chunks the same way as
// plain ASCII.
func ChunkText(text string, chunkSize, overlap, minLength int) (chunks []string, skipped int) {
	runes := []rune(text)
	total := len(runes)
	if total == 0 {
		return nil, 0
	}

	if chunkSize < 1 {
		chunkSize = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	// The window must advance on every pass.
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	start := 0
	for start < total {
		end := start + chunkSize
		sliceEnd := end
		if sliceEnd > total {
			sliceEnd = total
		}
		window := runes[start:sliceEnd]

		if end < total {
			if bp := lastSentenceBreak(window); float64(bp) > float64(chunkSize)*0.5 {
				end = start + bp + 1
				window = runes[start:end]
			}
		}

		chunk := strings.TrimSpace(string(window))
		if len([]rune(chunk)) > minLength {
			chunks = append(chunks, chunk)
		} else {
			skipped++
		}

		// A sentence-boundary cut can pull end back to within overlap of
		// start; the window must still advance.
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, skipped
}

// lastSentenceBreak returns the index of the last period or newline in the
// window, or -1 when neither occurs.
func lastSentenceBreak(window []rune) int {
	bp := -1
	for i, r := range window {
		if r == '.' || r == '\n' {
			bp = i
		}
	}
	return bp
}
