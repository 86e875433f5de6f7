package service

import (
	"encoding/json"
	"strings"
)

const extractionPrompt = `Você é um especialista em leitura de CUPONS FISCAIS BRASILEIROS (NFC-e).

Tarefa: extrair do documento o estabelecimento, o CNPJ, a data, o valor total e TODOS os produtos que aparecem nele.

Regras:
1. Leia o cupom linha por linha. Os produtos ficam entre o cabeçalho (nome da loja, CNPJ, endereço) e o TOTAL.
2. Copie o nome de cada produto exatamente como está impresso (ex.: "ARROZ TIPO 1 5KG").
3. A quantidade é o número antes de "UN"/"KG"; o preço unitário vem depois do "x"; o preço total é o último valor da linha.
4. Nunca invente produtos, nomes genéricos ou preços. Se não conseguir ler um produto, pule-o.
5. Use null para campos ilegíveis. Uma lista vazia é melhor que dados falsos.
6. Não confunda SUBTOTAL, DESCONTO, TROCO ou forma de pagamento com itens.

Responda APENAS com um JSON neste formato:
{
  "fornecedor": "nome do estabelecimento ou null",
  "cnpj": "CNPJ ou null",
  "data": "YYYY-MM-DD ou null",
  "total": 0.0,
  "forma_pagamento": "forma de pagamento ou null",
  "itens": [
    {"nome": "NOME DO PRODUTO", "quantidade": 1.0, "preco_unitario": 0.0, "preco_total": 0.0}
  ]
}`

const itemsOnlyPrompt = `Você é um especialista em leitura de CUPONS FISCAIS BRASILEIROS.

Foco único: listar TODOS os produtos visíveis neste cupom.

Regras:
1. Ignore o cabeçalho (loja, CNPJ, endereço) e o rodapé (SUBTOTAL, TOTAL, pagamento).
2. Cada produto costuma ocupar uma ou duas linhas: "001 FEIJAO CARIOCA 1KG" seguido de "2 UN x 8,50   17,00".
3. Copie os nomes exatamente como aparecem. Nunca invente.
4. Se não enxergar nenhum produto com clareza, devolva a lista vazia.

Responda APENAS com um JSON neste formato:
{
  "itens": [
    {"nome": "NOME DO PRODUTO", "quantidade": 1.0, "preco_unitario": 0.0, "preco_total": 0.0}
  ]
}`

const pdfTextHeader = "\n\nTexto extraído do PDF:\n"

const pdfNoTextNotice = "\n\nO documento é um PDF sem camada de texto legível. Se não houver dados, devolva os campos como null e a lista de itens vazia."

const (
	chatStartInstruction = "\n\nApresente os dados extraídos e comece a validação."
	chatStartUserTurn    = "Olá, processou meu cupom fiscal?"
)

// DefaultCategoryNames lists the categories the assistant may suggest.
var DefaultCategoryNames = []string{
	"Hortifruti",
	"Carnes e Peixes",
	"Laticínios",
	"Grãos e Cereais",
	"Bebidas",
	"Temperos e Condimentos",
	"Limpeza",
	"Descartáveis",
	"Outros",
}

func buildChatSystemPrompt(data any) string {
	extracted, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		extracted = []byte("{}")
	}

	var b strings.Builder
	b.WriteString(`Você é um assistente de controle de compras de um restaurante. Seu papel é validar com o usuário os dados extraídos de um cupom fiscal.

Dados extraídos:
`)
	b.Write(extracted)
	b.WriteString(`

Como conduzir a conversa:
1. Apresente um resumo claro: fornecedor, data, total e a lista de itens com quantidades e preços.
2. Pergunte se os dados estão corretos e peça que o usuário aponte qualquer erro.
3. Para cada item, sugira uma categoria entre: `)
	b.WriteString(strings.Join(DefaultCategoryNames, ", "))
	b.WriteString(`.
4. Se o usuário corrigir algo, confirme a correção de forma objetiva.
5. Quando tudo estiver validado, diga que ele pode clicar em "Salvar Compra".

Seja cordial e conciso, responda sempre em português do Brasil e use listas para os itens.`)
	return b.String()
}
