package httperr

var messages = map[string]string{
	"invalid_request":        "Dados inválidos.",
	"invalid_date_or_time":   "Data ou hora inválida.",
	"invalid_status":         "Status inválido.",
	"invalid_hours":          "Horário inválido. Use o formato HH:MM.",
	"invalid_file":           "Arquivo de imagem inválido.",
	"file_too_large":         "Arquivo maior que o permitido (5 MB).",
	"in_the_past":            "Não é possível agendar no passado.",
	"outside_business_hours": "Fora do horário de funcionamento.",

	"invalid_credentials":          "Email ou senha incorretos.",
	"invalid_token":                "Não foi possível validar as credenciais.",
	"token_revoked":                "Token revogado, faça login novamente.",
	"user_not_found":               "Usuário não encontrado.",
	"missing_authorization_header": "Token de acesso não informado.",
	"invalid_authorization_header": "Cabeçalho de autorização inválido.",
	"wrong_password":               "Senha atual incorreta.",

	"forbidden":            "Acesso negado.",
	"forbidden_role":       "Seu perfil não tem acesso a este recurso.",
	"forbidden_salon":      "Você não tem permissão para acessar este salão.",
	"salon_inactive":       "Salão desativado. Entre em contato com o suporte.",
	"subscription_pending": "Assinatura pendente. Regularize o pagamento para acessar.",

	"salon_not_found":        "Salão não encontrado.",
	"client_not_found":       "Cliente não encontrado.",
	"service_not_found":      "Serviço não encontrado.",
	"professional_not_found": "Profissional não encontrado.",
	"appointment_not_found":  "Agendamento não encontrado.",
	"link_not_found":         "Vínculo não encontrado.",

	"time_conflict":             "Já existe um agendamento para este profissional neste horário.",
	"active_appointment_exists": "Cliente já possui um agendamento ativo neste salão.",
	"invalid_state":             "Transição de status não permitida.",
	"email_already_exists":      "Email já cadastrado.",
	"phone_already_exists":      "Telefone já cadastrado neste salão.",
	"invalid_phone":             "Telefone inválido.",
	"already_linked":            "Profissional já vinculado a este serviço.",
	"insufficient_points":       "Pontos insuficientes.",
	"invalid_email_domain":      "O domínio do e-mail informado não parece ser válido.",
	"invalid_email":             "E-mail inválido.",

	"storage_unavailable": "Upload de arquivos não configurado.",
	"billing_unavailable": "Pagamentos não configurados.",

	"internal_error": "Erro interno do servidor.",
}

// Message returns the user-facing text for a code.
func Message(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return code
}
