package query

import "strings"

// stopwords filtered out of the keyword set. Articles, prepositions,
// pronouns, and common auxiliaries.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"for": {}, "with": {}, "by": {}, "about": {}, "of": {}, "from": {},
	"as": {}, "this": {}, "that": {}, "and": {}, "or": {}, "but": {},
	"if": {}, "when": {}, "where": {}, "how": {}, "what": {}, "which": {},
	"who": {}, "whom": {}, "whose": {}, "why": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {},
	"has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "i": {},
	"you": {}, "he": {}, "she": {}, "they": {}, "we": {}, "it": {},
}

// IsStopword reports whether w is in the fixed stopword set.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// vocabulary of terms recognized for boosting: command-line tools, actions,
// databases and services, cloud providers, frameworks. Order matters; it is
// the emission order for ExtractKeyTerms. Not exhaustive by design.
var vocabulary = []string{
	// Command-line tools
	"git", "docker", "npm", "node", "python", "pip", "aws", "curl", "wget",
	"ssh", "scp", "rsync", "tar", "zip", "unzip", "grep", "find", "sed", "awk",
	"head", "tail", "cat", "less", "more", "chmod", "chown", "mkdir", "rm", "cp",
	"mv", "ls", "ps", "kill", "systemctl", "service", "apt", "yum", "brew",
	"kubernetes", "k8s", "kubectl", "terraform", "ansible", "bash", "zsh", "fish",
	"vim", "emacs", "nano", "code", "make", "gcc", "clang", "javac", "go", "rust",

	// Actions
	"start", "stop", "run", "install", "update", "remove", "create", "delete", "build",
	"deploy", "up", "down", "clone", "push", "pull", "commit", "checkout", "merge",
	"compose", "exec", "login", "logout", "config", "init", "test", "serve",

	// Databases and services
	"redis", "postgres", "postgresql", "mysql", "mongodb", "mongo", "db",
	"elasticsearch", "nginx", "apache", "tomcat", "wordpress", "rabbitmq",
	"kafka", "zookeeper", "cassandra", "memcached", "jenkins",

	// Cloud providers and tools
	"azure", "gcp", "google", "cloud", "ec2", "s3", "lambda",
	"cloudformation", "heroku", "netlify", "vercel",

	// Frameworks and libraries
	"react", "vue", "angular", "svelte", "express", "flask", "django",
	"spring", "rails", "laravel", "dotnet", "tensorflow", "pytorch",
	"pandas", "numpy", "scikit", "jupyter", "notebook",
}

// phrases are known two-word combinations. Checked before single words so
// multi-word intent survives the later exact-containment boost checks.
var phrases = []string{
	"docker compose",
	"git commit",
	"git push",
	"git pull",
	"git clone",
	"npm install",
	"pip install",
}

// vocabularySet mirrors vocabulary for O(1) membership checks.
var vocabularySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(vocabulary))
	for _, term := range vocabulary {
		set[term] = struct{}{}
	}
	return set
}()

// ExtractKeywords returns the stopword-filtered tokens of a normalized
// query. Order is preserved and duplicates are retained; repeated words
// deliberately amplify the adjacent-pair phrase bonus downstream.
func ExtractKeywords(text string) []string {
	words := strings.Fields(Normalize(text))
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 1 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

// ExtractKeyTerms scans the query for curated vocabulary terms and known
// phrases. Phrases come first, each followed by its constituent words when
// those are independently in the vocabulary, then remaining vocabulary
// terms in list order. Deduplicated; length-1 terms dropped.
func ExtractKeyTerms(text string) []string {
	lower := strings.ToLower(text)

	var terms []string
	seen := make(map[string]struct{})
	add := func(term string) {
		if len(term) <= 1 {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, phrase := range phrases {
		if !strings.Contains(lower, phrase) {
			continue
		}
		add(phrase)
		for _, word := range strings.Fields(phrase) {
			if _, known := vocabularySet[word]; known {
				add(word)
			}
		}
	}

	for _, term := range vocabulary {
		if strings.Contains(lower, term) {
			add(term)
		}
	}

	return terms
}
