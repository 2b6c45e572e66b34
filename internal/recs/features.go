package recs

import (
	"math"
	"strings"
	"unicode"
)

// FeatureVectorSize is the fixed input width of the external skill-matching
// model. Changing it requires retraining that model.
const FeatureVectorSize = 100

// Feature normalization divisors, fixed by the trained model.
const (
	skillCountNorm = 20
	matchCountNorm = 10
)

// SkillMatchCount counts candidate skills that fuzzily match any job skill:
// a case-insensitive substring test in either direction. "go" matches
// "golang" and vice versa. Known to over-match on short names ("java" vs
// "javascript"); kept because the trained model saw exactly these counts.
func SkillMatchCount(candidateSkills, jobSkills []string) int {
	count := 0
	for _, cs := range candidateSkills {
		lc := strings.ToLower(cs)
		for _, js := range jobSkills {
			lj := strings.ToLower(js)
			if strings.Contains(lc, lj) || strings.Contains(lj, lc) {
				count++
				break
			}
		}
	}
	return count
}

// BuildFeatureVector encodes a candidate/job pair as the model's
// fixed-width input: six derived features followed by zero padding.
func BuildFeatureVector(candidateSkills, jobSkills []string, jobTitle, jobDescription string) []float64 {
	matchCount := SkillMatchCount(candidateSkills, jobSkills)
	matchRatio := float64(matchCount) / math.Max(float64(len(jobSkills)), 1)

	skillsText := strings.Join(candidateSkills, " ")
	titleSim := TextSimilarity(skillsText, jobTitle)
	descSim := TextSimilarity(skillsText, jobDescription)

	vector := make([]float64, FeatureVectorSize)
	vector[0] = matchRatio
	vector[1] = float64(len(candidateSkills)) / skillCountNorm
	vector[2] = float64(len(jobSkills)) / skillCountNorm
	vector[3] = titleSim
	vector[4] = descSim
	vector[5] = float64(matchCount) / matchCountNorm
	return vector
}

// TextSimilarity is a TF-IDF proxy for the similarity of two short texts:
// both are treated as a two-document corpus, and the term-weight products
// are summed over the term union, capped at 1. Either side tokenizing to
// nothing → 0.
func TextSimilarity(text1, text2 string) float64 {
	tokens1 := tokenize(text1)
	tokens2 := tokenize(text2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0
	}

	tf1 := termCounts(tokens1)
	tf2 := termCounts(tokens2)

	similarity := 0.0
	for term, n1 := range tf1 {
		n2, ok := tf2[term]
		if !ok {
			continue
		}
		idf := inverseDocFreq(term, tf1, tf2)
		similarity += float64(n1) * idf * float64(n2) * idf
	}

	return math.Min(similarity, 1)
}

// tokenize lowercases and splits on anything that is not a letter or digit.
// Unlike the matching tokenizer in the interactive engine this keeps every
// token: the model's term weights were built without a stop list.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// inverseDocFreq computes smoothed IDF over the two-document corpus.
func inverseDocFreq(term string, docs ...map[string]int) float64 {
	containing := 0
	for _, doc := range docs {
		if doc[term] > 0 {
			containing++
		}
	}
	return math.Log(float64(len(docs))/(1+float64(containing))) + 1
}
