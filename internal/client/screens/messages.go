package screens

const (
	msgFillAllFields    = "Por favor, preencha todos os campos"
	msgPasswordMismatch = "As senhas não coincidem"
	msgSignUpDone       = "Registro realizado com sucesso! Verifique seu email para confirmar."

	msgListNameRequired = "Por favor, insira um nome para a lista"
	msgListCreated      = "Lista criada com sucesso!"
	msgListDeleted      = "Lista excluída com sucesso!"

	msgItemNameRequired = "Por favor, insira um nome para o item"
	msgItemCreated      = "Item adicionado com sucesso!"
	msgItemDeleted      = "Item excluído com sucesso!"

	msgExportReady = "Exportação pronta: %s"
)

// fallbacks for failures that carry no message
const (
	errSignIn     = "Erro ao fazer login"
	errSignUp     = "Erro ao fazer registro"
	errLoadLists  = "Erro ao carregar listas"
	errCreateList = "Erro ao criar lista"
	errDeleteList = "Erro ao excluir lista"
	errSignOut    = "Erro ao fazer logout"
	errLoadItems  = "Erro ao carregar itens"
	errCreateItem = "Erro ao adicionar item"
	errUpdateItem = "Erro ao atualizar item"
	errDeleteItem = "Erro ao excluir item"
	errExportList = "Erro ao exportar lista"
)

// Empty-state texts.
const (
	EmptyListsTitle = "Você ainda não tem listas de compras"
	EmptyListsHint  = "Crie sua primeira lista!"
	EmptyItemsTitle = "Esta lista ainda não tem itens"
	EmptyItemsHint  = "Adicione seu primeiro item!"
)

// ViewState is the fetch state of a collection screen.
type ViewState int

const (
	Loading ViewState = iota
	Loaded
)
