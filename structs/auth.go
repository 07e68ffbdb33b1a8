package structs

type RegistroRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Nombre    string `json:"nombre" binding:"required"`
	Apellidos string `json:"apellidos"`
	Username  string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	Nombre    *string `json:"nombre"`
	Apellidos *string `json:"apellidos"`
	Username  *string `json:"username"`
	Foto      *string `json:"foto"`
	Avatar    *string `json:"avatar"`
}

type DesbloquearLogroRequest struct {
	LogroId string `json:"logroId" binding:"required"`
}

type SumarPuntosRequest struct {
	Cantidad int    `json:"cantidad" binding:"required"`
	Motivo   string `json:"motivo"`
}
