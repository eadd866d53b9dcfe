package keywords

// Set is a lookup table of lowercased tokens.
type Set map[string]struct{}

// NewSet builds a Set from words.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s Set) Has(word string) bool {
	_, ok := s[word]
	return ok
}

// With returns a copy of s extended with extra.
func (s Set) With(extra ...string) Set {
	out := make(Set, len(s)+len(extra))
	for w := range s {
		out[w] = struct{}{}
	}
	for _, w := range extra {
		out[w] = struct{}{}
	}
	return out
}

// DefaultStopWords returns a fresh copy of the built-in stop-word table.
func DefaultStopWords() Set {
	return NewSet(stopWords...)
}

// stopWords holds tokens that never rank as keywords. Multi-word phrases
// are kept for callers matching phrases; the single-word tokenizer never
// produces them.
var stopWords = []string{
	// Articles, prepositions, conjunctions.
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by", "from",
	"up", "about", "into", "through", "during", "before", "after", "above", "below", "between",
	"among", "within", "without",

	// Pronouns and determiners.
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them", "my", "your",
	"his", "its", "our", "their", "mine", "yours", "hers", "ours", "theirs", "this", "that", "these",
	"those", "some", "any", "each", "every", "all", "both", "few", "many",

	// Common verbs and their inflections.
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "having", "do", "does",
	"did", "doing", "will", "would", "could", "should", "may", "might", "must", "can", "get", "got",
	"getting", "go", "goes", "went", "going", "come", "came", "coming", "see", "saw", "seen",
	"seeing", "know", "knew", "known", "knowing", "think", "thought", "thinking", "take", "took",
	"taken", "taking", "make", "made", "making", "give", "gave", "given", "giving", "use", "used",
	"using", "find", "found", "finding", "tell", "told", "telling", "ask", "asked", "asking", "work",
	"worked", "working", "try", "tried", "trying", "call", "called", "calling", "need", "needed",
	"needing", "feel", "felt", "feeling", "become", "became", "becoming", "leave", "left", "leaving",
	"put", "putting", "mean", "meant", "meaning", "keep", "kept", "keeping", "let", "letting",
	"begin", "began", "begun", "beginning", "seem", "seemed", "seeming", "help", "helped", "helping",
	"talk", "talked", "talking", "turn", "turned", "turning", "start", "started", "starting", "show",
	"showed", "shown", "showing", "hear", "heard", "hearing", "play", "played", "playing", "run",
	"ran", "running", "move", "moved", "moving", "live", "lived", "living", "believe", "believed",
	"believing", "hold", "held", "holding", "bring", "brought", "bringing", "happen", "happened",
	"happening", "write", "wrote", "written", "writing", "provide", "provided", "providing", "sit",
	"sat", "sitting", "stand", "stood", "standing", "lose", "lost", "losing", "pay", "paid", "paying",
	"meet", "met", "meeting", "include", "included", "including", "continue", "continued",
	"continuing", "set", "setting", "learn", "learned", "learnt", "learning", "change", "changed",
	"changing", "lead", "led", "leading", "understand", "understood", "understanding", "watch",
	"watched", "watching", "follow", "followed", "following", "stop", "stopped", "stopping", "create",
	"created", "creating", "speak", "spoke", "spoken", "speaking", "read", "reading", "allow",
	"allowed", "allowing", "add", "added", "adding", "spend", "spent", "spending", "grow", "grew",
	"grown", "growing", "open", "opened", "opening", "walk", "walked", "walking", "win", "won",
	"winning", "offer", "offered", "offering", "remember", "remembered", "remembering", "love",
	"loved", "loving", "consider", "considered", "considering", "appear", "appeared", "appearing",
	"buy", "bought", "buying", "wait", "waited", "waiting", "serve", "served", "serving", "die",
	"died", "dying", "send", "sent", "sending", "expect", "expected", "expecting", "build", "built",
	"building", "stay", "stayed", "staying", "fall", "fell", "fallen", "falling", "cut", "cutting",
	"reach", "reached", "reaching", "kill", "killed", "killing", "remain", "remained", "remaining",

	// Adverbs and generic adjectives.
	"not", "no", "yes", "so", "just", "now", "then", "here", "there", "where", "when", "why", "how",
	"what", "who", "which", "whose", "whom", "very", "too", "also", "well", "still", "only", "even",
	"back", "more", "most", "other", "another", "such", "own", "out", "way", "time", "new", "first",
	"last", "long", "great", "little", "old", "right", "big", "high", "different", "small", "large",
	"next", "early", "young", "important", "public", "bad", "same", "able", "good", "best", "better",
	"worse", "worst", "much", "less", "least", "enough", "quite", "rather", "pretty", "really",
	"actually", "certainly", "probably", "perhaps", "maybe", "almost", "always", "never", "sometimes",
	"often", "usually", "again", "once", "twice", "ever", "already", "yet",

	// Website and business boilerplate.
	"home", "contact", "page", "website", "site", "web", "click", "link", "links", "menu",
	"navigation", "nav", "header", "footer", "sidebar", "content", "main", "section", "article",
	"post", "blog", "news", "view", "hide", "toggle", "button", "form", "input", "submit", "search",
	"results", "result", "pages", "previous", "prev", "login", "logout", "sign", "register",
	"account", "user", "users", "admin", "administrator", "settings", "options", "preferences",
	"profile", "dashboard", "panel", "control", "manage", "management", "system", "data",
	"information", "info", "details", "description", "title", "name", "email", "password", "username",
	"date", "category", "categories", "tag", "tags", "archive", "archives", "recent", "popular",
	"featured", "related", "similar", "share", "social", "facebook", "twitter", "instagram",
	"linkedin", "youtube", "google", "apple", "microsoft", "amazon", "meta", "company", "business",
	"service", "services", "product", "products", "solution", "solutions", "team", "staff", "member",
	"members", "client", "clients", "customer", "customers", "support", "faq", "privacy", "policy",
	"terms", "conditions", "legal", "copyright", "rights", "reserved", "inc", "ltd", "llc", "corp",
	"corporation", "group", "international", "global", "worldwide", "national", "local", "cookies",
	"powered", "powered by", "privacy policy", "terms of service", "terms of use", "disclaimer",
	"contact us", "about us", "our services", "our products", "our team", "our company",
	"our business", "our website", "our blog", "our news", "our articles", "our posts", "our pages",
	"our content", "our information", "our details", "our description", "our title", "our name",
	"our email", "our password", "our username", "our date", "our time", "our category",
	"our categories", "our tag", "our tags", "our archive", "our archives", "our recent",
	"our popular", "our featured", "our related", "our similar", "our share", "our social",
	"our facebook", "our twitter", "our instagram", "our linkedin", "our youtube", "our google",
	"our apple", "our microsoft", "our amazon", "our meta", "our service", "our product",
	"our solution", "our solutions", "our staff", "our member", "our members", "our client",
	"our clients", "our customer", "our customers", "our support", "our help", "our faq",
	"our privacy", "our policy", "our terms", "our conditions", "our legal", "our copyright",
	"our rights", "our reserved", "our inc", "our ltd", "our llc", "our corp", "our corporation",
	"our group", "our international", "our global", "our worldwide", "our national", "our local",
}
