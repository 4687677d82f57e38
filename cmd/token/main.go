// token emite un JWT firmado con JWT_SECRET para pruebas locales contra la API.
//
// Uso: go run ./cmd/token -user <uuid> [-role bodeguero] [-minutes 60]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "user_id dueño de los recursos (obligatorio)")
	role := flag.String("role", "admin", "admin | bodeguero | vendedor")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
