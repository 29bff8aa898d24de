package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"marketBack/internal/models"
)

// collectFormFiles gathers all files sent under the given form keys.
func collectFormFiles(form *multipart.Form, keys ...string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}

	var result []*multipart.FileHeader
	for _, key := range keys {
		if headers, ok := form.File[key]; ok {
			result = append(result, headers...)
		}
	}
	return result
}

// gatherFormValues returns the non-empty values under the given keys. A value
// holding a JSON array or a comma separated list is split into its items.
func gatherFormValues(form *multipart.Form, keys ...string) ([]string, error) {
	if form == nil {
		return nil, nil
	}

	var result []string
	for _, key := range keys {
		for _, raw := range form.Value[key] {
			raw = strings.TrimSpace(raw)
			if raw == "" || raw == "null" || raw == "undefined" {
				continue
			}
			if strings.HasPrefix(raw, "[") {
				var arr []interface{}
				if err := json.Unmarshal([]byte(raw), &arr); err != nil {
					return nil, fmt.Errorf("decode %s: %w", key, err)
				}
				for _, item := range arr {
					if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
						result = append(result, s)
					}
				}
				continue
			}
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part != "" {
					result = append(result, part)
				}
			}
		}
	}
	return result, nil
}

func gatherFormInts(form *multipart.Form, keys ...string) ([]int, error) {
	values, err := gatherFormValues(form, keys...)
	if err != nil {
		return nil, err
	}
	ints := make([]int, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid id %q", v)
		}
		ints = append(ints, n)
	}
	return ints, nil
}

// gatherAnswers reads answers sent as answers[<question_id>]=text fields or as
// a JSON array in the answers field.
func gatherAnswers(form *multipart.Form) ([]models.ListingAnswer, error) {
	if form == nil {
		return nil, nil
	}

	var answers []models.ListingAnswer
	for _, raw := range form.Value["answers"] {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var arr []models.ListingAnswer
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		answers = append(answers, arr...)
	}

	var keyed []models.ListingAnswer
	for key, values := range form.Value {
		if !strings.HasPrefix(key, "answers[") || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		qid, err := strconv.Atoi(key[len("answers[") : len(key)-1])
		if err != nil || qid <= 0 {
			return nil, fmt.Errorf("invalid question id in %q", key)
		}
		keyed = append(keyed, models.ListingAnswer{QuestionID: qid, Answer: values[len(values)-1]})
	}
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].QuestionID < keyed[j].QuestionID })
	answers = append(answers, keyed...)

	var result []models.ListingAnswer
	for _, a := range answers {
		a.Answer = strings.TrimSpace(a.Answer)
		if a.QuestionID > 0 && a.Answer != "" {
			result = append(result, a)
		}
	}
	return result, nil
}

func formValue(form *multipart.Form, key string) string {
	if form == nil || len(form.Value[key]) == 0 {
		return ""
	}
	return strings.TrimSpace(form.Value[key][0])
}

// formDecimal parses a money field; a malformed value reads as zero so that
// field validation reports it.
func formDecimal(form *multipart.Form, key string) decimal.Decimal {
	d, err := decimal.NewFromString(formValue(form, key))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// formNullDecimal is like formDecimal but an empty field stays unset. A
// malformed value reads as -1 so that validation rejects it.
func formNullDecimal(form *multipart.Form, key string) decimal.NullDecimal {
	raw := formValue(form, key)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NewNullDecimal(decimal.NewFromInt(-1))
	}
	return decimal.NewNullDecimal(d)
}

func formInt(form *multipart.Form, key string) int {
	raw := formValue(form, key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
