package wizard

// CatalogEntry is a fixed title/detail pair shown for a checklist item.
type CatalogEntry struct {
	Title  string
	Detail string
}

var frontSection = [...]CatalogEntry{
	{Title: "Dianteiro amassado", Detail: "Verificação de danos na parte dianteira do veículo"},
	{Title: "Levanta fio", Detail: "Inspeção do sistema levanta fio"},
	{Title: "Frontal da carreta amassada", Detail: "Verificação de danos na parte frontal da carreta"},
	{Title: "Retrovisores em boas condições", Detail: "Verificação do estado e fixação dos retrovisores"},
}

var rearSection = [...]CatalogEntry{
	{Title: "Lanternas queimadas", Detail: "Verificação de lanternas queimadas"},
	{Title: "Lanternas quebradas", Detail: "Inspeção de lanternas quebradas ou danificadas"},
	{Title: "Batente de porta em boas condições", Detail: "Verificação do estado dos batentes das portas"},
	{Title: "Faixa refletiva do para-choque em boas condições", Detail: "Inspeção das faixas refletivas do para-choque"},
	{Title: "Traseira amassada", Detail: "Verificação de danos na parte traseira"},
}

var inspectionCatalog = [...]CatalogEntry{
	{Title: "Foto Seção Frontal", Detail: "Documentação fotográfica obrigatória da seção frontal"},
	{Title: "Foto Seção Traseira", Detail: "Documentação fotográfica obrigatória da seção traseira"},
}

// VerificationCatalog returns the step 2 items, front section first.
func VerificationCatalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(frontSection)+len(rearSection))
	out = append(out, frontSection[:]...)
	return append(out, rearSection[:]...)
}

// InspectionCatalog returns the photographed step 3 items.
func InspectionCatalog() []CatalogEntry {
	return append([]CatalogEntry(nil), inspectionCatalog[:]...)
}

// FrontSectionSize is the number of leading verification items that belong to the front section.
const FrontSectionSize = len(frontSection)
