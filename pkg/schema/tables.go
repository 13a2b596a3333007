package schema

// Default returns the ERP catalog the assistant is allowed to query. The data
// mirrors the seedbed ERP's file layout: one entry per logical table with
// human descriptions used both in prompts and when formatting results.
func Default() *Registry {
	return New([]Table{
		{
			Key:         "clientes",
			RealName:    "clientes",
			Description: "Cartera de clientes del semillero: datos de contacto, domicilio y localización de cada cliente.",
			Columns: map[string]string{
				"id":      "Código único que identifica a cada cliente",
				"CL_DENO": "Denominación o nombre completo del cliente",
				"CL_DOM":  "Domicilio del cliente",
				"CL_POB":  "Población del cliente",
				"CL_PROV": "Provincia del cliente",
				"CL_CDP":  "Código postal del cliente",
				"CL_TEL":  "Número de teléfono del cliente",
				"CL_FAX":  "Número de fax del cliente",
				"CL_CIF":  "Código de identificación fiscal",
				"CL_EMA":  "Dirección de correo electrónico del cliente",
				"CL_WEB":  "Dirección web del cliente",
				"CL_PAIS": "País de residencia del cliente",
			},
		},
		{
			Key:         "vendedores",
			RealName:    "vendedores",
			Description: "Usuarios internos con funciones de venta o acceso al sistema.",
			Columns: map[string]string{
				"id":      "Código único que identifica a cada vendedor",
				"VD_DENO": "Denominación o nombre completo del vendedor",
				"VD_DOM":  "Domicilio del vendedor",
				"VD_POB":  "Población de residencia",
				"VD_PROV": "Provincia de residencia",
				"VD_PDA":  "Número de técnico asociado",
			},
			Relationships: []Relationship{
				{
					TargetTable:   "tecnicos",
					LocalColumn:   "VD_PDA",
					ForeignColumn: "id",
					Description:   "Ficha técnica del vendedor cuando además cumple funciones técnicas",
				},
			},
		},
		{
			Key:         "tecnicos",
			RealName:    "tecnicos",
			Description: "Información ampliada de los usuarios que cumplen funciones técnicas.",
			Columns: map[string]string{
				"id":      "Código único identificador del técnico",
				"TN_TEL":  "Teléfono de contacto",
				"TN_EMA":  "Email de contacto",
				"TN_DOM":  "Domicilio completo",
				"TN_POB":  "Población",
				"TN_PROV": "Provincia",
				"TN_CIF":  "Código de identificación fiscal",
			},
		},
		{
			Key:         "proveedores",
			RealName:    "proveedores",
			Description: "Proveedores de semillas, sustratos y material del semillero.",
			Columns: map[string]string{
				"id":      "Código único que identifica a cada proveedor",
				"PR_DENO": "Denominación o razón social del proveedor",
				"PR_DOM":  "Domicilio del proveedor",
				"PR_POB":  "Población del proveedor",
				"PR_PROV": "Provincia del proveedor",
				"PR_TEL":  "Teléfono de contacto",
				"PR_EMA":  "Correo electrónico del proveedor",
			},
		},
		{
			Key:         "articulos",
			RealName:    "articulos",
			Description: "Catálogo de artículos: semillas, plantas injertadas, bandejas y servicios.",
			Columns: map[string]string{
				"id":      "Código único del artículo",
				"AR_DENO": "Denominación o descripción del artículo",
				"AR_REF":  "Referencia adicional del artículo",
				"AR_PRV":  "Código del proveedor principal del artículo",
				"AR_BAR":  "Código de barras del artículo",
			},
			Relationships: []Relationship{
				{
					TargetTable:   "proveedores",
					LocalColumn:   "AR_PRV",
					ForeignColumn: "id",
					Description:   "Proveedor principal que suministra el artículo",
				},
			},
			SearchColumns: []string{"AR_DENO", "AR_REF"},
		},
		{
			Key:         "bandejas",
			RealName:    "bandejas",
			Description: "Tipos de bandeja de siembra con su número de alvéolos.",
			Columns: map[string]string{
				"id":      "Código único de la bandeja",
				"BN_DENO": "Denominación de la bandeja",
				"BN_ALV":  "Número de alvéolos de la bandeja",
				"BN_ART":  "Artículo asociado a la bandeja",
			},
			Relationships: []Relationship{
				{
					TargetTable:   "articulos",
					LocalColumn:   "BN_ART",
					ForeignColumn: "id",
					Description:   "Artículo comercial que corresponde a la bandeja",
				},
			},
		},
		{
			Key:         "acciones_com",
			RealName:    "acciones_com",
			Description: "Registro de acciones comerciales realizadas con clientes.",
			Columns: map[string]string{
				"id":        "Identificador único de la acción comercial",
				"ACCO_DENO": "Denominación o tipo de acción comercial",
				"ACCO_CDCL": "Código del cliente",
				"ACCO_CDVD": "Código del vendedor",
				"ACCO_FEC":  "Fecha de la acción",
				"ACCO_HOR":  "Hora de la acción",
			},
			Relationships: []Relationship{
				{
					TargetTable:   "clientes",
					LocalColumn:   "ACCO_CDCL",
					ForeignColumn: "id",
					Description:   "Cliente asociado a la acción comercial",
				},
				{
					TargetTable:   "vendedores",
					LocalColumn:   "ACCO_CDVD",
					ForeignColumn: "id",
					Description:   "Vendedor responsable de la acción",
				},
				{
					TargetTable:   "acciones_com_acco_not",
					LocalColumn:   "id",
					ForeignColumn: "id",
					Description:   "Observaciones asociadas a la acción comercial",
				},
			},
		},
		{
			Key:         "acciones_com_acco_not",
			RealName:    "acciones_com_acco_not",
			Description: "Observaciones e incidencias de las acciones comerciales, divididas en filas por id2.",
			Columns: map[string]string{
				"id":  "Identificador de la acción comercial a la que se refiere la observación",
				"id2": "Identificador secuencial de la parte del texto",
				"C0":  "Texto de la observación o nota",
			},
		},
		{
			Key:         "partes_siembra",
			RealName:    "p-siembras",
			Description: "Partes de siembra: qué semilla se sembró, en qué bandeja y en qué fecha.",
			Columns: map[string]string{
				"id":      "Identificador del parte de siembra",
				"PSI_FEC": "Fecha del parte de siembra",
				"PSI_SEM": "Código de la semilla o artículo sembrado",
				"PSI_BAN": "Código de la bandeja utilizada",
				"PSI_CAN": "Cantidad de bandejas sembradas",
			},
			Relationships: []Relationship{
				{
					TargetTable:   "articulos",
					LocalColumn:   "PSI_SEM",
					ForeignColumn: "id",
					Description:   "Artículo sembrado en el parte",
				},
				{
					TargetTable:   "bandejas",
					LocalColumn:   "PSI_BAN",
					ForeignColumn: "id",
					Description:   "Bandeja empleada en la siembra",
				},
			},
		},
		{
			Key:         "albaranes_venta",
			RealName:    "alb-venta",
			Description: "Albaranes de venta emitidos a clientes.",
			Columns: map[string]string{
				"id":     "Identificador del albarán de venta",
				"AV_FEC": "Fecha del albarán",
				"AV_CDCL": "Código del cliente del albarán",
				"AV_TOT": "Importe total del albarán",
			},
			Relationships: []Relationship{
				{
					TargetTable:   "clientes",
					LocalColumn:   "AV_CDCL",
					ForeignColumn: "id",
					Description:   "Cliente al que se emitió el albarán",
				},
			},
		},
	})
}
