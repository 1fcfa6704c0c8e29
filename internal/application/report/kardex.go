// Package report arma el kardex de un producto: el histórico de movimientos
// con saldo corrido, más la foto actual de lotes y costos.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barratec/barra-api/internal/domain"
	"github.com/barratec/barra-api/internal/domain/entity"
	"github.com/barratec/barra-api/internal/domain/repository"
)

// KardexLine una fila del kardex: movimiento + saldo luego de aplicarlo.
type KardexLine struct {
	Movement entity.StockMovement
	Balance  decimal.Decimal
}

// KardexData todo lo que necesita el generador para armar el documento.
type KardexData struct {
	Product     *entity.Product
	Stock       *entity.Stock
	Lines       []KardexLine
	GeneratedAt time.Time
}

// KardexPDFGenerator puerto del generador del documento.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, data *KardexData) ([]byte, error)
}

// KardexUseCase genera el kardex en PDF de un producto.
type KardexUseCase struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	movRepo     repository.StockMovementRepository
	generator   KardexPDFGenerator
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	generator KardexPDFGenerator,
) *KardexUseCase {
	return &KardexUseCase{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		movRepo:     movRepo,
		generator:   generator,
	}
}

// DownloadKardexPDF arma el kardex del producto y genera el PDF.
// El saldo corrido se reconstruye hacia atrás desde el disponible actual,
// así la última fila siempre cierra con el stock real.
func (uc *KardexUseCase) DownloadKardexPDF(ctx context.Context, productID string, limit int) (pdfBytes []byte, filename string, err error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: obtener producto: %w", err)
	}
	if product == nil {
		return nil, "", domain.ErrNotFound
	}

	stock, err := uc.stockRepo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: obtener stock: %w", err)
	}
	if stock == nil {
		stock = entity.NewStock("", productID, time.Now())
		stock.Unit = product.Unit
	}

	if limit <= 0 || limit > 500 {
		limit = 200
	}
	movements, err := uc.movRepo.ListByProduct(ctx, productID, limit, 0)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: listar movimientos: %w", err)
	}

	// Los movimientos vienen más recientes primero. El saldo de la fila i
	// es el disponible actual menos lo aplicado después de ella.
	balance := stock.TotalAvailable()
	lines := make([]KardexLine, len(movements))
	for i, m := range movements {
		lines[i] = KardexLine{Movement: *m, Balance: balance}
		balance = balance.Sub(m.Quantity)
	}
	// Orden cronológico para el documento.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	data := &KardexData{
		Product:     product,
		Stock:       stock,
		Lines:       lines,
		GeneratedAt: time.Now(),
	}
	pdfBytes, err = uc.generator.GenerateKardexPDF(ctx, data)
	if err != nil {
		return nil, "", err
	}

	name := strings.ReplaceAll(strings.ToLower(product.Name), " ", "_")
	filename = fmt.Sprintf("kardex_%s_%s.pdf", name, data.GeneratedAt.Format("20060102"))
	return pdfBytes, filename, nil
}
