package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials  ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken          ErrCode = "EMAIL_TAKEN"
	ErrTokenRequired       ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid        ErrCode = "TOKEN_INVALID"
	ErrTokenRevoked        ErrCode = "TOKEN_REVOKED"
	ErrAuthRequired        ErrCode = "AUTHENTICATION_REQUIRED"
	ErrPremiumOnly         ErrCode = "PREMIUM_ONLY"
	ErrFreeLimitReached    ErrCode = "FREE_LIMIT_REACHED"
	ErrFreeSimulationLimit ErrCode = "FREE_SIMULATION_LIMIT"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrUnknownSubject ErrCode = "UNKNOWN_SUBJECT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrQuestionNotFound ErrCode = "QUESTION_NOT_FOUND"

	// ─── Simulation ────────────────────────────────────────────────────
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrSimulationNotFound    ErrCode = "SIMULATION_NOT_FOUND"
	ErrSimulationFinished    ErrCode = "SIMULATION_FINISHED"
	ErrSimulationGrading     ErrCode = "SIMULATION_GRADING"
	ErrInvalidQuestionIndex  ErrCode = "INVALID_QUESTION_INDEX"

	// ─── Essay ─────────────────────────────────────────────────────────
	ErrUnknownTheme  ErrCode = "UNKNOWN_THEME"
	ErrEssayTooShort ErrCode = "ESSAY_TOO_SHORT"

	// ─── Corpus ────────────────────────────────────────────────────────
	ErrEmptyCorpus ErrCode = "EMPTY_CORPUS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "E-mail ou senha incorretos."
	case ErrEmailTaken:
		return "Já existe uma conta com este e-mail."
	case ErrTokenRequired:
		return "Token de autenticação obrigatório."
	case ErrTokenInvalid:
		return "Token de autenticação inválido."
	case ErrTokenRevoked:
		return "Sua sessão foi encerrada. Faça login novamente."
	case ErrAuthRequired:
		return "Faça login para salvar seu progresso."
	case ErrPremiumOnly:
		return "Recurso disponível apenas para assinantes premium."
	case ErrFreeLimitReached:
		return "Você atingiu o limite de 30 questões do plano gratuito."
	case ErrFreeSimulationLimit:
		return "O plano gratuito inclui apenas um simulado."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Falha na validação. Verifique os dados enviados."
	case ErrInvalidPayload:
		return "Corpo da requisição inválido."
	case ErrUnknownSubject:
		return "Matéria desconhecida."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso não encontrado."
	case ErrQuestionNotFound:
		return "Questão não encontrada."

	// ─── Simulation ────────────────────────────────────────────────────
	case ErrInsufficientQuestions:
		return "Não há questões suficientes para montar o simulado."
	case ErrSimulationNotFound:
		return "Simulado não encontrado."
	case ErrSimulationFinished:
		return "Este simulado já foi finalizado."
	case ErrSimulationGrading:
		return "O simulado está sendo corrigido. Tente novamente em instantes."
	case ErrInvalidQuestionIndex:
		return "Questão fora do simulado."

	// ─── Essay ─────────────────────────────────────────────────────────
	case ErrUnknownTheme:
		return "Tema de redação inválido."
	case ErrEssayTooShort:
		return "A redação deve ter pelo menos 500 caracteres."

	// ─── Corpus ────────────────────────────────────────────────────────
	case ErrEmptyCorpus:
		return "Banco de questões indisponível no momento."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Muitas requisições. Aguarde um momento."

	// ─── Server ────────────────────────────────────────────────────────
	default:
		return "Ocorreu um erro interno no servidor."
	}
}
