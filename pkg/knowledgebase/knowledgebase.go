// Package knowledgebase seeds the vector store with ERP usage notes the
// assistant retrieves as prompt context.
package knowledgebase

import (
	"context"

	"github.com/semillaai/semilla/pkg/vector"
)

var notes = []string{
	`Los partes de siembra se guardan en la tabla p-siembras (clave lógica partes_siembra).
Cada parte indica qué artículo se sembró (PSI_SEM), en qué bandeja (PSI_BAN), cuántas
bandejas (PSI_CAN) y en qué fecha (PSI_FEC).`,

	`Los albaranes de venta viven en la tabla alb-venta (clave lógica albaranes_venta).
AV_CDCL enlaza con el id del cliente y AV_FEC es la fecha de emisión.`,

	`Las acciones comerciales (acciones_com) registran visitas y llamadas a clientes.
Las observaciones largas están en acciones_com_acco_not, divididas en filas por id2
que se concatenan en orden para recuperar el texto completo.`,

	`Las denominaciones de artículos (AR_DENO) suelen incluir la variedad y el calibre,
por ejemplo "TOMATE PERA INJERTADO". Para búsquedas parciales conviene usar LIKE
sobre AR_DENO y como alternativa la referencia AR_REF.`,

	`Los clientes se identifican por denominación (CL_DENO). El teléfono está en CL_TEL,
la población en CL_POB y la provincia en CL_PROV, habitualmente en mayúsculas y sin
tildes.`,
}

// Populate seeds the knowledge table from scratch.
func Populate(ctx context.Context, ks *vector.KnowledgeService) error {
	if err := ks.Truncate(ctx); err != nil {
		return err
	}
	for _, note := range notes {
		if err := ks.Store(ctx, note); err != nil {
			return err
		}
	}
	return nil
}
