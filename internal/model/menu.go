package model

// Resource identifiers of the clinic application. Menu items and route
// guards refer to these.
const (
	ResourceDashboard         = "dashboard"
	ResourcePatients          = "patients"
	ResourceAppointments      = "appointments"
	ResourceMedicalRecords    = "medical_records"
	ResourceOccupationalExams = "occupational_exams"
	ResourceErgonomics        = "ergonomics"
	ResourceBilling           = "billing"
	ResourceInventory         = "inventory"
	ResourceReports           = "reports"
	ResourceUsers             = "users"
	ResourceSettings          = "settings"
	ResourceTenants           = "tenants"
)

// MenuItem is a navigable resource with the minimum level needed to see it.
type MenuItem struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	Route         string `json:"route"`
	RequiredLevel Level  `json:"required_level"`
}

// MenuCatalog is the static navigation catalog, in display order.
var MenuCatalog = []MenuItem{
	{ID: ResourceDashboard, DisplayName: "Tablero", Route: "/dashboard", RequiredLevel: LevelRead},
	{ID: ResourcePatients, DisplayName: "Pacientes", Route: "/pacientes", RequiredLevel: LevelRead},
	{ID: ResourceAppointments, DisplayName: "Agenda", Route: "/agenda", RequiredLevel: LevelRead},
	{ID: ResourceMedicalRecords, DisplayName: "Expedientes", Route: "/expedientes", RequiredLevel: LevelRead},
	{ID: ResourceOccupationalExams, DisplayName: "Exámenes ocupacionales", Route: "/examenes", RequiredLevel: LevelRead},
	{ID: ResourceErgonomics, DisplayName: "Ergonomía", Route: "/ergonomia", RequiredLevel: LevelRead},
	{ID: ResourceBilling, DisplayName: "Facturación", Route: "/facturacion", RequiredLevel: LevelRead},
	{ID: ResourceInventory, DisplayName: "Inventario", Route: "/inventario", RequiredLevel: LevelRead},
	{ID: ResourceReports, DisplayName: "Reportes", Route: "/reportes", RequiredLevel: LevelRead},
	{ID: ResourceUsers, DisplayName: "Usuarios", Route: "/usuarios", RequiredLevel: LevelFull},
	{ID: ResourceSettings, DisplayName: "Configuración", Route: "/configuracion", RequiredLevel: LevelFull},
	{ID: ResourceTenants, DisplayName: "Empresas", Route: "/empresas", RequiredLevel: LevelFull},
}

// FindMenuItem looks an item up by resource id.
func FindMenuItem(id string) (MenuItem, bool) {
	for _, item := range MenuCatalog {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}
