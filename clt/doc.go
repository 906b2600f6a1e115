/*
 * doc.go, part of gocamcasp.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

//Package clt reads the cluster (.clt) file that describes a CamCASP job.
//
//The file is scanned in two phases. The first one collects the molecule
//declarations (names, ionization potentials, HOMO energies and asymptotic
//correction shifts), the second one the directives that describe the
//calculation: which molecules take part, the run type, the SCF code,
//the basis sets and the asymptotic correction. The result is a Job,
//which the basis, scf and engine packages consume.
//
//Energies are stored in atomic units. Values given in eV are converted
//on input.
package clt
