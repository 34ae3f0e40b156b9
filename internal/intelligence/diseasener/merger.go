package diseasener

// spanPrediction is one labelled character span with its softmax score.
type spanPrediction struct {
	start int
	end   int
	label string
	score float64
}

func isDiseaseLabel(l string) bool {
	return l == LabelBegin || l == LabelInside
}

// mergeSpans fuses a position-sorted prediction list into entity spans.
//
// Two consecutive predictions merge when either
//   - both carry disease labels (B or I) and the gap between them is at most
//     maxAdjacencyGap characters, or
//   - they carry the same label and overlap or sit within the gap.
//
// A merged span keeps the furthest end, averages the two scores, and takes
// the B label whenever either side had it. Overlapping duplicates from
// neighbouring windows collapse through the same-label overlap rule.
func mergeSpans(preds []spanPrediction) []spanPrediction {
	if len(preds) == 0 {
		return nil
	}

	merged := []spanPrediction{preds[0]}
	for _, p := range preds[1:] {
		last := &merged[len(merged)-1]
		gap := p.start - last.end
		adjacent := gap <= maxAdjacencyGap

		bothDisease := isDiseaseLabel(last.label) && isDiseaseLabel(p.label)
		sameLabel := last.label == p.label && (p.start <= last.end || adjacent)

		if (bothDisease && adjacent) || sameLabel {
			if p.end > last.end {
				last.end = p.end
			}
			last.score = (last.score + p.score) / 2
			if last.label == LabelBegin || p.label == LabelBegin {
				last.label = LabelBegin
			} else {
				last.label = LabelInside
			}
			continue
		}
		merged = append(merged, p)
	}
	return merged
}
