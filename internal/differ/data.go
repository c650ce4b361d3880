package differ

// DiffData implements §4.F: a byte-level LCS over two sections' raw
// contents, run-length coded into chunks and scored the same way as §4.E
// with bytes as the weight unit. Long zero-byte runs are coalesced so a
// large, uninitialized padding region doesn't explode into one chunk per
// byte.
func DiffData(target, base []byte) SectionDataDiff {
	pairs := byteLCS(target, base)
	chunks := buildDataChunks(target, base, pairs)
	chunks = coalesceZeroRuns(chunks)

	var diffScore, maxScore uint64
	for _, c := range chunks {
		w := uint64(c.Size)
		maxScore += w
		if c.Kind != DataNone {
			diffScore += w
		}
	}
	return SectionDataDiff{Chunks: chunks, MatchPercent: matchPercent(diffScore, maxScore)}
}

// DiffBSS implements the section-scoped BSS special case from §4.F: compared
// by size only, since there is no byte content to align. A size mismatch
// scores 0%, matching the original's no_diff_bss_section rule for a whole
// section pair; this is the only granularity the pipeline currently drives
// BSS through. The original's per-symbol diff_bss_symbol rule (50% on a
// size mismatch, since a size-only difference is a weaker signal for one
// symbol than for an entire section) applies when comparing individual BSS
// symbols rather than whole sections — not exercised here, since the
// pipeline doesn't do symbol-level BSS diffing.
func DiffBSS(targetSize, baseSize uint64) SectionDataDiff {
	if targetSize == baseSize {
		return SectionDataDiff{
			Chunks:       []DataDiffChunk{{Kind: DataNone, Size: int(targetSize)}},
			MatchPercent: 100,
		}
	}
	var chunks []DataDiffChunk
	if targetSize > 0 {
		chunks = append(chunks, DataDiffChunk{Kind: DataDelete, Size: int(targetSize)})
	}
	if baseSize > 0 {
		chunks = append(chunks, DataDiffChunk{Kind: DataInsert, Size: int(baseSize)})
	}
	total := targetSize
	if baseSize > total {
		total = baseSize
	}
	return SectionDataDiff{Chunks: chunks, MatchPercent: matchPercent(total, total)}
}

// byteLCS runs the same O(n·m) DP as the instruction differ, over raw bytes.
// Section sizes in this domain (linker output for a single translation
// unit) stay small enough that the quadratic table is the pragmatic choice
// — the same tradeoff the instruction differ makes, and for the same
// reason: no diff library in the retrieval pack to lean on instead.
func byteLCS(target, base []byte) []indexPair {
	n, m := len(target), len(base)
	if n == 0 || m == 0 {
		return nil
	}
	dp := make([][]int32, n+1)
	for i := range dp {
		dp[i] = make([]int32, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if target[i] == base[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}
	var pairs []indexPair
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case target[i] == base[j]:
			pairs = append(pairs, indexPair{i, j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return pairs
}

func buildDataChunks(target, base []byte, anchors []indexPair) []DataDiffChunk {
	var chunks []DataDiffChunk
	ti, bi := 0, 0
	flush := func(tEnd, bEnd int) {
		if tEnd > ti && bEnd > bi {
			n := tEnd - ti
			if bEnd-bi < n {
				n = bEnd - bi
			}
			chunks = append(chunks, DataDiffChunk{Kind: DataReplace, Data: target[ti : ti+n], Size: n})
			ti += n
			bi += n
		}
		if tEnd > ti {
			chunks = append(chunks, DataDiffChunk{Kind: DataDelete, Data: target[ti:tEnd], Size: tEnd - ti})
			ti = tEnd
		}
		if bEnd > bi {
			chunks = append(chunks, DataDiffChunk{Kind: DataInsert, Data: base[bi:bEnd], Size: bEnd - bi})
			bi = bEnd
		}
	}
	for _, a := range anchors {
		flush(a.t, a.b)
		chunks = appendByte(chunks, target[a.t])
		ti, bi = a.t+1, a.b+1
	}
	flush(len(target), len(base))
	return mergeAdjacent(chunks)
}

func appendByte(chunks []DataDiffChunk, b byte) []DataDiffChunk {
	if n := len(chunks); n > 0 && chunks[n-1].Kind == DataNone {
		chunks[n-1].Data = append(chunks[n-1].Data, b)
		chunks[n-1].Size++
		return chunks
	}
	return append(chunks, DataDiffChunk{Kind: DataNone, Data: []byte{b}, Size: 1})
}

// mergeAdjacent coalesces consecutive chunks of the same kind produced by
// the per-anchor flush loop, so a run of matched bytes doesn't fragment
// across anchor boundaries.
func mergeAdjacent(chunks []DataDiffChunk) []DataDiffChunk {
	var out []DataDiffChunk
	for _, c := range chunks {
		if n := len(out); n > 0 && out[n-1].Kind == c.Kind {
			out[n-1].Data = append(out[n-1].Data, c.Data...)
			out[n-1].Size += c.Size
			continue
		}
		out = append(out, c)
	}
	return out
}

// coalesceZeroRuns compacts every chunk, of any kind, whose bytes are all
// zero and whose Size is at least zeroRunThreshold (§4.F "Size > data.len to
// keep output compact"): the Data field is emptied while Size still reports
// the true byte count.
const zeroRunThreshold = 64

func coalesceZeroRuns(chunks []DataDiffChunk) []DataDiffChunk {
	for i, c := range chunks {
		if c.Size < zeroRunThreshold || !allZero(c.Data) {
			continue
		}
		chunks[i].Data = c.Data[:0]
	}
	return chunks
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
