package handler

// User-facing messages, kept in one place so handlers and tests agree
// on the exact strings.
const (
	msgUserCreated  = "Usuário criado com sucesso."
	msgUserUpdated  = "Usuário atualizado com sucesso."
	msgUserDeleted  = "Usuário deletado com sucesso."
	msgUserNotFound = "Usuário não encontrado."
	msgEmailExists  = "E-mail já cadastrado."
	msgUserFetched  = "Usuário(s) buscado(s) com sucesso."

	msgInternalError  = "Erro interno do servidor."
	msgInvalidRequest = "Requisição inválida."

	msgInvalidCredentials = "Credenciais inválidas."
	msgLoginSuccess       = "Login realizado com sucesso."
	msgLogoutSuccess      = "Logout realizado com sucesso."
	msgTokenNotFound      = "Token de autenticação não encontrado."
	msgTokenValid         = "Token de autenticação válido."
	msgSessionExpired     = "Sessão expirada, faça login novamente."
	msgCodeInvalid        = "Código inválido ou expirado."
	msgCodeSent           = "Código de verificação enviado com sucesso."
	msgCodeCooldown       = "Aguarde antes de solicitar um novo código."
	msgEmailVerified      = "E-mail verificado com sucesso."
	msgResetSent          = "Código de recuperação enviado com sucesso."
	msgPasswordUpdated    = "Senha atualizada com sucesso."

	msgCamposObrigatorios  = "Todos os campos são obrigatórios."
	msgPlanilhaNotFound    = "Planilha não encontrada."
	msgPlanilhaDeleted     = "Planilha deletada com sucesso."
	msgLinhaNotFound       = "Linha da planilha não encontrada."
	msgLinhaDeleted        = "Linha da Planilha deletada com sucesso."
	msgNotificacaoNotFound = "Notificação não encontrada."
)
