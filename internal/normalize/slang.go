// ABOUTME: Token dictionary for slang, abbreviations, typos and transliterated Telugu
// ABOUTME: Values are canonical English; an empty value drops filler tokens entirely

package normalize

// slang maps a squeezed lowercase token to its canonical replacement.
// No replacement token may itself be a key; that keeps Normalize idempotent.
var slang = map[string]string{
	// courtesy and chat shorthand
	"plz":      "please",
	"pls":      "please",
	"plss":     "please",
	"pleas":    "please",
	"u":        "you",
	"ya":       "you",
	"ur":       "your",
	"urs":      "yours",
	"r":        "are",
	"y":        "why",
	"wat":      "what",
	"wht":      "what",
	"wut":      "what",
	"whats":    "what is",
	"wats":     "what is",
	"whatre":   "what are",
	"hw":       "how",
	"abt":      "about",
	"abut":     "about",
	"bout":     "about",
	"im":       "i am",
	"ive":      "i have",
	"youre":    "you are",
	"dont":     "do not",
	"doesnt":   "does not",
	"didnt":    "did not",
	"wanna":    "want to",
	"gonna":    "going to",
	"gimme":    "give me",
	"lemme":    "let me",
	"yrs":      "years",
	"yr":       "year",
	"hru":      "how are you",
	"wassup":   "what is up",
	"wasup":    "what is up",
	"sup":      "what is up",
	"gm":       "good morning",
	"gn":       "good night",
	"hii":      "hi",
	"hiya":     "hi",
	"helo":     "hello",
	"hellow":   "hello",
	"heyy":     "hey",
	"heya":     "hey",
	"thx":      "thanks",
	"thnx":     "thanks",
	"thanx":    "thanks",
	"tnx":      "thanks",
	"ty":       "thanks",
	"tq":       "thanks",
	"tysm":     "thanks",
	"thankyou": "thank you",
	"thanku":   "thanks",
	"thnks":    "thanks",
	"bbye":     "bye",
	"byee":     "bye",
	"bai":      "bye",
	"tata":     "bye",
	"cya":      "see you",
	"ttyl":     "talk to you later",

	// profile vocabulary typos and abbreviations
	"resumee":    "resume",
	"resum":      "resume",
	"resme":      "resume",
	"rezume":     "resume",
	"cv":         "resume",
	"biodata":    "resume",
	"proj":       "project",
	"projs":      "projects",
	"prjects":    "projects",
	"projets":    "projects",
	"exp":        "experience",
	"xp":         "experience",
	"experiance": "experience",
	"expirience": "experience",
	"edu":        "education",
	"skillz":     "skills",
	"skils":      "skills",
	"hobbys":     "hobbies",
	"hobies":     "hobbies",
	"linkdin":    "linkedin",
	"linkedln":   "linkedin",
	"mail":       "email",
	"gh":         "github",
	"wrk":        "work",
	"ml":         "machine learning",
	"js":         "javascript",
	"ts":         "typescript",
	"py":         "python",
	"colg":       "college",
	"clg":        "college",
	"univ":       "university",

	// fillers
	"bro":    "",
	"bruh":   "",
	"dude":   "",
	"buddy":  "",
	"yaar":   "",
	"bhai":   "",
	"anna":   "",
	"ra":     "",
	"da":     "",
	"lol":    "",
	"lmao":   "",
	"haha":   "",
	"hehe":   "",
	"ok":     "",
	"okay":   "",
	"kindly": "",

	// transliterated Telugu
	"nuvvu":          "you",
	"nuvu":           "you",
	"meeru":          "you",
	"miru":           "you",
	"meeku":          "you",
	"neeku":          "you",
	"nee":            "your",
	"mee":            "your",
	"gurinchi":       "about",
	"gurunchi":       "about",
	"cheppu":         "tell",
	"chepu":          "tell",
	"cheppandi":      "tell",
	"chepandi":       "tell",
	"chpu":           "tell",
	"emiti":          "what",
	"enti":           "what",
	"emi":            "what",
	"em":             "what",
	"ela":            "how",
	"unnaru":         "are you",
	"unnav":          "are you",
	"unnavu":         "are you",
	"bagunnara":      "how are you",
	"bagunnava":      "how are you",
	"namaste":        "hello",
	"namaskaram":     "hello",
	"namaskaaram":    "hello",
	"dhanyavadalu":   "thanks",
	"dhanyavaadalu":  "thanks",
	"projectlu":      "projects",
	"chesina":        "built",
	"chesaru":        "did you build",
	"chesav":         "did you build",
	"chadivaru":      "studied",
	"chadivav":       "studied",
	"chaduvu":        "education",
	"telusu":         "know",
	"udyogam":        "job",
	"pani":           "work",
	"anubhavam":      "experience",
	"istam":          "like",
	"ishtam":         "like",
	"kalakshepam":    "hobbies",
	"vellostha":      "bye",
	"velosta":        "bye",
	"illu":           "home",
	"amma":           "mother",
	"nanna":          "father",
	"pelli":          "marriage",
	"kutumbam":       "family",
	"jeetham":        "salary",
	"vayasu":         "age",
	"inka":           "more",
	"kuda":           "also",
	"ekkada":         "where",
	"evaru":          "who",
	"sampradinchali": "contact",
}
