package services

// Textos da Aria. Prompts carry a verb slot where the answer is echoed back.
type promptCatalog struct {
	Init1           string
	Init2           string
	AskCompany      string // %s = first name
	AskRole         string // %s = company
	AskEmail        string
	InvalidEmail    string
	AskPhone        string
	AskBottleneck   string
	AskChannel      string
	AskIntegrations string
	AskVolume       string
	AskTimeline     string
	Done            string // %s = first name
	Goodbye         string
	Fallback        string
}

var catalogs = map[string]*promptCatalog{
	"pt": {
		Init1:           "Olá! Eu sou a Aria, a assistente virtual da AI For Purpose. 👋",
		Init2:           "Antes de começarmos, como você se chama?",
		AskCompany:      "Prazer, %s! De qual empresa você fala?",
		AskRole:         "Legal! E qual é o seu cargo na %s?",
		AskEmail:        "Ótimo. Qual o seu melhor e-mail para contato?",
		InvalidEmail:    "Hmm, esse e-mail não parece válido. Pode conferir e digitar novamente?",
		AskPhone:        "Perfeito. E qual o seu telefone? De preferência WhatsApp.",
		AskBottleneck:   "Obrigada! Agora me conta: qual é o maior gargalo operacional da sua empresa hoje?",
		AskChannel:      "Entendi. Por qual canal esse processo acontece hoje? (WhatsApp, Instagram, site...)",
		AskIntegrations: "Quais sistemas ou ferramentas precisariam ser integrados? (CRM, ERP, planilhas...)",
		AskVolume:       "Qual o volume aproximado de atendimentos ou operações por mês?",
		AskTimeline:     "Estamos quase lá! Qual o prazo ideal para ter isso funcionando?",
		Done:            "Perfeito, %s! Registrei tudo por aqui. Nossa equipe vai analisar o seu caso e entrar em contato em breve. ✅",
		Goodbye:         "Obrigada pelo seu tempo! Qualquer coisa é só me chamar de novo. Até logo! 👋",
		Fallback:        "Desculpe, estou com problemas técnicos no momento. Tente novamente mais tarde.",
	},
	"en": {
		Init1:           "Hi! I'm Aria, the AI For Purpose virtual assistant. 👋",
		Init2:           "Before we start, what's your name?",
		AskCompany:      "Nice to meet you, %s! Which company are you with?",
		AskRole:         "Great! And what's your role at %s?",
		AskEmail:        "Got it. What's the best email to reach you?",
		InvalidEmail:    "Hmm, that email doesn't look right. Could you check it and type it again?",
		AskPhone:        "Perfect. And your phone number? WhatsApp preferred.",
		AskBottleneck:   "Thanks! Now tell me: what's the biggest operational bottleneck in your company today?",
		AskChannel:      "I see. Which channel does that process run on today? (WhatsApp, Instagram, website...)",
		AskIntegrations: "Which systems or tools would need to be integrated? (CRM, ERP, spreadsheets...)",
		AskVolume:       "Roughly how many interactions or operations per month?",
		AskTimeline:     "Almost there! What's your ideal timeline to have this running?",
		Done:            "Perfect, %s! I've got everything noted. Our team will review your case and reach out soon. ✅",
		Goodbye:         "Thanks for your time! Ping me again anytime. Bye! 👋",
		Fallback:        "Sorry, I'm having technical issues right now. Please try again later.",
	},
}

func promptsFor(language string) *promptCatalog {
	if c, ok := catalogs[language]; ok {
		return c
	}
	return catalogs["pt"]
}
