package services

import (
	"regexp"
	"strings"
	"unicode"

	"alfredoptarigan/resume-intake/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	educationKeywords     = []string{"education", "degree", "university", "college", "bachelor", "master", "phd", "graduation"}
	experienceKeywords    = []string{"experience", "work", "employment", "job", "position", "role"}
	certificationKeywords = []string{"certification", "certificate", "certified", "aws", "google", "microsoft"}
	projectKeywords       = []string{"project", "portfolio"}
	hobbyKeywords         = []string{"hobbies", "interests", "hobby", "interest"}
	introKeywords         = []string{"summary", "introduction", "about", "profile", "objective"}
	nameStopwords         = []string{"summary", "introduction", "profile", "objective", "resume", "curriculum"}

	knownSkills = []string{
		"python", "java", "javascript", "typescript", "go", "golang", "sql", "mongodb", "postgresql",
		"fastapi", "flask", "django", "react", "node.js", "aws", "gcp", "azure", "docker", "kubernetes",
		"git", "linux", "data analysis", "machine learning", "deep learning",
		"tensorflow", "pytorch", "pandas", "numpy", "scikit-learn",
	}

	skillPatterns = compileSkillPatterns(knownSkills)
)

const (
	maxRuleCertifications = 5
	maxRuleProjects       = 5
	maxRuleHobbies        = 5
	introWindow           = 300
)

// ExtractWithRules is the keyword-based extractor used when no extraction model is configured.
func ExtractWithRules(text string) models.CandidateFields {
	lines := strings.Split(text, "\n")
	lower := strings.ToLower(text)

	fields := models.CandidateFields{
		Name:           ruleName(lines),
		Email:          emailPattern.FindString(text),
		Phone:          strings.TrimSpace(phonePattern.FindString(text)),
		Introduction:   ruleIntroduction(text, lower),
		Education:      ruleEducation(lines),
		Experience:     ruleExperience(lines),
		Skills:         ruleSkills(lower),
		Certifications: ruleCertifications(lines),
		Projects:       ruleProjects(lines),
		Hobbies:        ruleHobbies(lines),
	}
	fields.Normalize()
	return fields
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ruleName takes the first line when it looks like a person's name.
func ruleName(lines []string) string {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 || strings.ContainsAny(line, "@:|/") {
			return ""
		}
		for _, r := range line {
			if unicode.IsDigit(r) {
				return ""
			}
		}
		if containsAny(strings.ToLower(line), nameStopwords) {
			return ""
		}
		return line
	}
	return ""
}

func ruleEducation(lines []string) []models.Education {
	for i, line := range lines {
		if !containsAny(strings.ToLower(line), educationKeywords) {
			continue
		}
		degree := strings.TrimSpace(line)
		// a bare section heading: the entry is on the next line
		if strings.EqualFold(strings.TrimSuffix(degree, ":"), "education") && i+1 < len(lines) {
			if next := strings.TrimSpace(lines[i+1]); next != "" {
				degree = next
			}
		}
		return []models.Education{{Degree: degree, Year: yearPattern.FindString(degree)}}
	}
	return nil
}

func ruleExperience(lines []string) []models.Experience {
	for i, line := range lines {
		if !containsAny(strings.ToLower(line), experienceKeywords) {
			continue
		}
		if i+1 < len(lines) {
			if title := strings.TrimSpace(lines[i+1]); title != "" {
				return []models.Experience{{Title: title}}
			}
		}
		return nil
	}
	return nil
}

func ruleSkills(lower string) []string {
	var skills []string
	for _, skill := range knownSkills {
		if skillPatterns[skill].MatchString(lower) {
			skills = append(skills, titleCase(skill))
		}
	}
	return dedupe(skills)
}

// compileSkillPatterns requires word boundaries so short names such as "go" do not match inside other words.
func compileSkillPatterns(skills []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(skills))
	for _, skill := range skills {
		patterns[skill] = regexp.MustCompile(`(^|[^a-z0-9])` + regexp.QuoteMeta(skill) + `($|[^a-z0-9])`)
	}
	return patterns
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func ruleCertifications(lines []string) []string {
	var certs []string
	for _, line := range lines {
		if !containsAny(strings.ToLower(line), certificationKeywords) {
			continue
		}
		if cert := strings.TrimSpace(line); len(cert) > 5 {
			certs = append(certs, cert)
			if len(certs) == maxRuleCertifications {
				break
			}
		}
	}
	return certs
}

func ruleProjects(lines []string) []string {
	for i, line := range lines {
		if !containsAny(strings.ToLower(line), projectKeywords) {
			continue
		}
		var projects []string
		for j := i + 1; j < len(lines) && j < i+10; j++ {
			if p := strings.TrimSpace(lines[j]); len(p) > 10 {
				projects = append(projects, p)
				if len(projects) == maxRuleProjects {
					break
				}
			}
		}
		return projects
	}
	return nil
}

func ruleHobbies(lines []string) []string {
	for _, line := range lines {
		if !containsAny(strings.ToLower(line), hobbyKeywords) {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) < 2 {
			return nil
		}
		var hobbies []string
		for _, h := range strings.Split(parts[1], ",") {
			if h = strings.TrimSpace(h); h != "" {
				hobbies = append(hobbies, h)
			}
			if len(hobbies) == maxRuleHobbies {
				break
			}
		}
		return hobbies
	}
	return nil
}

func ruleIntroduction(text, lower string) string {
	if len(lower) == len(text) {
		for _, keyword := range introKeywords {
			idx := strings.Index(lower, keyword)
			if idx < 0 {
				continue
			}
			intro := truncate(text[idx+len(keyword):], introWindow)
			intro = strings.TrimSpace(intro)
			intro = strings.TrimSpace(strings.TrimPrefix(intro, ":"))
			return truncate(intro, maxIntroductionChars)
		}
	}

	first := text
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		first = text[:idx]
	}
	return truncate(strings.TrimSpace(first), maxIntroductionChars)
}
